package ioformat

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/star/astrograph/internal/body"
	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/observatory"
	"github.com/star/astrograph/internal/ticks"
)

type programDoc struct {
	Universe          json.RawMessage `json:"universe,omitempty"`
	UniversePath      *string         `json:"universe_path,omitempty"`
	Observatories     json.RawMessage `json:"observatories,omitempty"`
	ObservatoriesPath *string         `json:"observatories_path,omitempty"`
	Start             string          `json:"start"`
	End               string          `json:"end"`
	Step              int64           `json:"step"`
	OutputRoot        string          `json:"output_root"`
}

// ResolvedProgram is a program file with its universe and observatories
// fully loaded, ready to hand to the driver.
type ResolvedProgram struct {
	Tree          *body.Tree
	Observatories []observatory.Observatory
	Start, End    ticks.Time
	Step          int64
	OutputRoot    string
}

// LoadProgram reads a program file at path, resolving universe_path and
// observatories_path relative to the program file's own directory when
// either is given by path instead of inline. logger is attached to the
// loaded universe's Keplerian dynamics; it may be nil.
func LoadProgram(path string, logger *slog.Logger) (*ResolvedProgram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.IoFailure, "reading program file "+path, err)
	}

	var doc programDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing program file", err)
	}

	dir := filepath.Dir(path)

	universeBytes, err := inlineOrPath(doc.Universe, doc.UniversePath, dir)
	if err != nil {
		return nil, err
	}
	tree, err := ParseUniverse(universeBytes, logger)
	if err != nil {
		return nil, err
	}

	obsBytes, err := inlineOrPath(doc.Observatories, doc.ObservatoriesPath, dir)
	if err != nil {
		return nil, err
	}
	observatories, err := ParseObservatories(obsBytes)
	if err != nil {
		return nil, err
	}

	start, err := ticks.Parse(doc.Start)
	if err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing program start", err)
	}
	end, err := ticks.Parse(doc.End)
	if err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing program end", err)
	}
	if doc.Step <= 0 {
		return nil, errkind.New(errkind.BadInput, "program step must be positive")
	}
	if end.Cmp(start) <= 0 {
		return nil, errkind.New(errkind.BadInput, "program end must be greater than start")
	}
	if doc.OutputRoot == "" {
		return nil, errkind.New(errkind.BadInput, "program output_root is required")
	}

	return &ResolvedProgram{
		Tree:          tree,
		Observatories: observatories,
		Start:         start,
		End:           end,
		Step:          doc.Step,
		OutputRoot:    doc.OutputRoot,
	}, nil
}

func inlineOrPath(inline json.RawMessage, path *string, relativeTo string) ([]byte, error) {
	if len(inline) > 0 {
		return inline, nil
	}
	if path == nil || *path == "" {
		return nil, errkind.New(errkind.BadInput, "program file must set either the inline field or its _path variant")
	}
	p := *path
	if !filepath.IsAbs(p) {
		p = filepath.Join(relativeTo, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errkind.Wrap(errkind.IoFailure, "reading "+p, err)
	}
	return data, nil
}
