// Package ioformat implements the engine's on-disk JSON formats: the
// universe (body tree), observatories, and program files. Every object
// decoded here rejects unknown fields so a typo in a hand-edited file
// surfaces as a bad-input error instead of being silently ignored.
package ioformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/star/astrograph/internal/body"
	"github.com/star/astrograph/internal/dynamics"
	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type bodyDoc struct {
	Name     string          `json:"name"`
	Dynamic  json.RawMessage `json:"dynamic"`
	Rotation json.RawMessage `json:"rotation,omitempty"`
	Radius   *float64        `json:"radius,omitempty"`
	Children []bodyDoc       `json:"children,omitempty"`
}

type dynamicKindDoc struct {
	Kind string `json:"kind"`
}

type fixedDoc struct {
	Kind   string     `json:"kind"`
	Offset [3]float64 `json:"offset"`
}

type keplerianDoc struct {
	Kind        string  `json:"kind"`
	A           float64 `json:"a"`
	E           float64 `json:"e"`
	I           float64 `json:"i"`
	OmegaBig    float64 `json:"omega_big"`
	OmegaLittle float64 `json:"omega_little"`
	M0          float64 `json:"m0"`
	Period      string  `json:"period"`
	Epoch       string  `json:"epoch"`
}

type rotationDoc struct {
	Axis  [3]float64 `json:"axis"`
	Rate  float64    `json:"rate"`
	Phase float64    `json:"phase"`
	Epoch string     `json:"epoch"`
}

// ParseUniverse decodes a universe file into a Body tree, rejecting
// unknown fields and unresolvable dynamic kinds as BadInput. logger is
// attached to every Keplerian dynamic in the tree so a non-convergent
// Kepler solve during simulation logs a warning instead of failing silently;
// it may be nil.
func ParseUniverse(data []byte, logger *slog.Logger) (*body.Tree, error) {
	var doc bodyDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing universe file", err)
	}
	root, err := buildBody(doc, logger)
	if err != nil {
		return nil, err
	}
	return body.New(root), nil
}

func buildBody(doc bodyDoc, logger *slog.Logger) (*body.Body, error) {
	dyn, err := buildDynamic(doc.Dynamic, logger)
	if err != nil {
		return nil, err
	}
	b := &body.Body{Name: doc.Name, Dynamic: dyn}

	if doc.Radius != nil {
		r := scalar.Scalar(*doc.Radius)
		b.Radius = &r
	}
	if len(doc.Rotation) > 0 {
		rot, err := buildRotation(doc.Rotation)
		if err != nil {
			return nil, err
		}
		b.Rotation = rot
	}
	for _, c := range doc.Children {
		child, err := buildBody(c, logger)
		if err != nil {
			return nil, err
		}
		b.Children = append(b.Children, child)
	}
	return b, nil
}

func buildDynamic(raw json.RawMessage, logger *slog.Logger) (dynamics.Translator, error) {
	var kind dynamicKindDoc
	if err := json.Unmarshal(raw, &kind); err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing dynamic kind", err)
	}

	switch dynamics.Kind(kind.Kind) {
	case dynamics.KindFixed:
		var d fixedDoc
		if err := decodeStrict(raw, &d); err != nil {
			return nil, errkind.Wrap(errkind.BadInput, "parsing fixed dynamic", err)
		}
		return dynamics.Fixed{Offset: vec3FromArray(d.Offset)}, nil

	case dynamics.KindKeplerian:
		var d keplerianDoc
		if err := decodeStrict(raw, &d); err != nil {
			return nil, errkind.Wrap(errkind.BadInput, "parsing keplerian dynamic", err)
		}
		period, err := ticks.Parse(d.Period)
		if err != nil {
			return nil, errkind.Wrap(errkind.BadInput, "parsing keplerian period", err)
		}
		epoch, err := ticks.Parse(d.Epoch)
		if err != nil {
			return nil, errkind.Wrap(errkind.BadInput, "parsing keplerian epoch", err)
		}
		return dynamics.NewKeplerian(
			scalar.Scalar(d.A), scalar.Scalar(d.E), scalar.Scalar(d.I),
			scalar.Scalar(d.OmegaBig), scalar.Scalar(d.OmegaLittle), scalar.Scalar(d.M0),
			period, epoch, logger,
		), nil

	default:
		return nil, errkind.New(errkind.BadInput, fmt.Sprintf("unknown dynamic kind %q", kind.Kind))
	}
}

func buildRotation(raw json.RawMessage) (*dynamics.Rotating, error) {
	var d rotationDoc
	if err := decodeStrict(raw, &d); err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing rotation", err)
	}
	epoch, err := ticks.Parse(d.Epoch)
	if err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing rotation epoch", err)
	}
	return &dynamics.Rotating{
		Axis:  vec3FromArray(d.Axis),
		Rate:  scalar.Scalar(d.Rate),
		Phase: scalar.Scalar(d.Phase),
		Epoch: epoch,
	}, nil
}

func vec3FromArray(a [3]float64) vector.Vec3 {
	return vector.Vec3{X: scalar.Scalar(a[0]), Y: scalar.Scalar(a[1]), Z: scalar.Scalar(a[2])}
}

func arrayFromVec3(v vector.Vec3) [3]float64 {
	return [3]float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

// MarshalUniverse serializes a Body tree to its canonical JSON form. Field
// order matches the struct declaration order above on every run, which
// keeps the serialized bytes (and so their SHA-256) stable across repeated
// calls for the same tree.
func MarshalUniverse(tree *body.Tree) ([]byte, error) {
	doc, err := marshalBody(tree.Root())
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errkind.Wrap(errkind.IoFailure, "marshaling universe", err)
	}
	return out, nil
}

func marshalBody(b *body.Body) (bodyDoc, error) {
	dynRaw, err := marshalDynamic(b.Dynamic)
	if err != nil {
		return bodyDoc{}, err
	}
	doc := bodyDoc{Name: b.Name, Dynamic: dynRaw}
	if b.Radius != nil {
		r := float64(*b.Radius)
		doc.Radius = &r
	}
	if b.Rotation != nil {
		rotRaw, err := json.Marshal(rotationDoc{
			Axis:  arrayFromVec3(b.Rotation.Axis),
			Rate:  float64(b.Rotation.Rate),
			Phase: float64(b.Rotation.Phase),
			Epoch: b.Rotation.Epoch.String(),
		})
		if err != nil {
			return bodyDoc{}, errkind.Wrap(errkind.IoFailure, "marshaling rotation", err)
		}
		doc.Rotation = rotRaw
	}
	for _, c := range b.Children {
		childDoc, err := marshalBody(c)
		if err != nil {
			return bodyDoc{}, err
		}
		doc.Children = append(doc.Children, childDoc)
	}
	return doc, nil
}

func marshalDynamic(d dynamics.Translator) (json.RawMessage, error) {
	var out json.RawMessage
	var err error
	switch v := d.(type) {
	case dynamics.Fixed:
		out, err = json.Marshal(fixedDoc{Kind: string(dynamics.KindFixed), Offset: arrayFromVec3(v.Offset)})
	case *dynamics.Keplerian:
		out, err = json.Marshal(keplerianDoc{
			Kind:        string(dynamics.KindKeplerian),
			A:           float64(v.SemiMajorAxis),
			E:           float64(v.Eccentricity),
			I:           float64(v.Inclination),
			OmegaBig:    float64(v.LongitudeAscNode),
			OmegaLittle: float64(v.ArgumentOfPeriapsis),
			M0:          float64(v.MeanAnomalyAtEpoch),
			Period:      v.Period.String(),
			Epoch:       v.Epoch.String(),
		})
	default:
		return nil, errkind.New(errkind.BadInput, fmt.Sprintf("cannot serialize dynamic of type %T", d))
	}
	if err != nil {
		return nil, errkind.Wrap(errkind.IoFailure, "marshaling dynamic", err)
	}
	return out, nil
}
