package ioformat

import (
	"encoding/json"

	"github.com/star/astrograph/internal/body"
	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/observatory"
	"github.com/star/astrograph/internal/scalar"
)

type sphericalDoc struct {
	R     float64 `json:"r"`
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}

type edgeDoc struct {
	A []int `json:"a"`
	B []int `json:"b"`
}

type constellationDoc struct {
	Name  string    `json:"name"`
	Edges []edgeDoc `json:"edges,omitempty"`
}

type observatoryDoc struct {
	Name           string             `json:"name"`
	BodyID         []int              `json:"body_id"`
	Location       sphericalDoc       `json:"location"`
	Constellations []constellationDoc `json:"constellations,omitempty"`
}

// ParseObservatories decodes an observatories file into a list of
// Observatory values. It does not resolve BodyID or constellation edge
// endpoints against a tree — callers run observatory.Resolve once the
// universe is loaded.
func ParseObservatories(data []byte) ([]observatory.Observatory, error) {
	var docs []observatoryDoc
	if err := decodeStrict(data, &docs); err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing observatories file", err)
	}
	out := make([]observatory.Observatory, len(docs))
	for i, d := range docs {
		out[i] = observatory.Observatory{
			Host: body.Id(d.BodyID),
			Location: observatory.Spherical{
				R: scalar.Scalar(d.Location.R), Theta: scalar.Scalar(d.Location.Theta), Phi: scalar.Scalar(d.Location.Phi),
			},
			Name:           d.Name,
			Constellations: buildConstellations(d.Constellations),
		}
	}
	return out, nil
}

func buildConstellations(docs []constellationDoc) []observatory.Constellation {
	if len(docs) == 0 {
		return nil
	}
	out := make([]observatory.Constellation, len(docs))
	for i, d := range docs {
		edges := make([]observatory.Edge, len(d.Edges))
		for j, e := range d.Edges {
			edges[j] = observatory.Edge{A: body.Id(e.A), B: body.Id(e.B)}
		}
		out[i] = observatory.Constellation{Name: d.Name, Edges: edges}
	}
	return out
}

// MarshalObservatories serializes a list of Observatory values to their
// canonical JSON form.
func MarshalObservatories(observatories []observatory.Observatory) ([]byte, error) {
	docs := make([]observatoryDoc, len(observatories))
	for i, o := range observatories {
		docs[i] = observatoryDoc{
			Name:   o.Name,
			BodyID: []int(o.Host),
			Location: sphericalDoc{
				R: float64(o.Location.R), Theta: float64(o.Location.Theta), Phi: float64(o.Location.Phi),
			},
			Constellations: marshalConstellations(o.Constellations),
		}
	}
	out, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, errkind.Wrap(errkind.IoFailure, "marshaling observatories", err)
	}
	return out, nil
}

func marshalConstellations(cs []observatory.Constellation) []constellationDoc {
	if len(cs) == 0 {
		return nil
	}
	out := make([]constellationDoc, len(cs))
	for i, c := range cs {
		edges := make([]edgeDoc, len(c.Edges))
		for j, e := range c.Edges {
			edges[j] = edgeDoc{A: []int(e.A), B: []int(e.B)}
		}
		out[i] = constellationDoc{Name: c.Name, Edges: edges}
	}
	return out
}
