package ioformat

import (
	"testing"

	"github.com/star/astrograph/internal/dynamics"
)

const sampleUniverse = `{
  "name": "sun",
  "dynamic": {"kind": "fixed", "offset": [0, 0, 0]},
  "radius": 0.5,
  "children": [
    {
      "name": "planet",
      "dynamic": {
        "kind": "keplerian",
        "a": 1, "e": 0, "i": 0,
        "omega_big": 0, "omega_little": 0, "m0": 0,
        "period": "360", "epoch": "0"
      },
      "rotation": {"axis": [0, 0, 1], "rate": 0.01, "phase": 0, "epoch": "0"},
      "radius": 0.05
    }
  ]
}`

func TestParseUniverseBuildsTree(t *testing.T) {
	tree, err := ParseUniverse([]byte(sampleUniverse), nil)
	if err != nil {
		t.Fatalf("ParseUniverse() error = %v", err)
	}
	flat := tree.Flat()
	if len(flat) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(flat))
	}
	if flat[0].Body.Name != "sun" || flat[1].Body.Name != "planet" {
		t.Fatalf("unexpected names: %q, %q", flat[0].Body.Name, flat[1].Body.Name)
	}
	if _, ok := flat[0].Body.Dynamic.(dynamics.Fixed); !ok {
		t.Fatalf("sun dynamic = %T, want dynamics.Fixed", flat[0].Body.Dynamic)
	}
	if _, ok := flat[1].Body.Dynamic.(*dynamics.Keplerian); !ok {
		t.Fatalf("planet dynamic = %T, want *dynamics.Keplerian", flat[1].Body.Dynamic)
	}
	if flat[1].Body.Rotation == nil {
		t.Fatalf("planet should carry a rotation")
	}
}

func TestParseUniverseRejectsUnknownField(t *testing.T) {
	bad := `{"name":"x","dynamic":{"kind":"fixed","offset":[0,0,0]},"bogus":1}`
	if _, err := ParseUniverse([]byte(bad), nil); err == nil {
		t.Fatalf("expected an error for an unknown top-level field")
	}
}

func TestParseUniverseRejectsUnknownDynamicField(t *testing.T) {
	bad := `{"name":"x","dynamic":{"kind":"fixed","offset":[0,0,0],"bogus":1}}`
	if _, err := ParseUniverse([]byte(bad), nil); err == nil {
		t.Fatalf("expected an error for an unknown dynamic field")
	}
}

func TestParseUniverseRejectsUnknownDynamicKind(t *testing.T) {
	bad := `{"name":"x","dynamic":{"kind":"orbital-resonance","offset":[0,0,0]}}`
	if _, err := ParseUniverse([]byte(bad), nil); err == nil {
		t.Fatalf("expected an error for an unknown dynamic kind")
	}
}

func TestMarshalUniverseRoundTrips(t *testing.T) {
	tree, err := ParseUniverse([]byte(sampleUniverse), nil)
	if err != nil {
		t.Fatalf("ParseUniverse() error = %v", err)
	}
	out, err := MarshalUniverse(tree)
	if err != nil {
		t.Fatalf("MarshalUniverse() error = %v", err)
	}
	reparsed, err := ParseUniverse(out, nil)
	if err != nil {
		t.Fatalf("ParseUniverse(round-trip) error = %v", err)
	}
	if len(reparsed.Flat()) != len(tree.Flat()) {
		t.Fatalf("round trip changed the tree shape")
	}
}

func TestMarshalUniverseIsDeterministic(t *testing.T) {
	tree, _ := ParseUniverse([]byte(sampleUniverse), nil)
	a, err := MarshalUniverse(tree)
	if err != nil {
		t.Fatalf("MarshalUniverse() error = %v", err)
	}
	b, err := MarshalUniverse(tree)
	if err != nil {
		t.Fatalf("MarshalUniverse() error = %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("two marshalings of the same tree produced different bytes")
	}
}

func TestParseUniverseKeepsChildOrder(t *testing.T) {
	doc := `{
		"name": "root",
		"dynamic": {"kind": "fixed", "offset": [0,0,0]},
		"children": [
			{"name": "a", "dynamic": {"kind": "fixed", "offset": [1,0,0]}},
			{"name": "b", "dynamic": {"kind": "fixed", "offset": [2,0,0]}}
		]
	}`
	tree, err := ParseUniverse([]byte(doc), nil)
	if err != nil {
		t.Fatalf("ParseUniverse() error = %v", err)
	}
	root := tree.Root()
	if len(root.Children) != 2 || root.Children[0].Name != "a" || root.Children[1].Name != "b" {
		t.Fatalf("children out of order: %+v", root.Children)
	}
}

func TestParseUniverseRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseUniverse([]byte("{not json"), nil); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}

func TestParseUniverseSunWithoutRadiusHasNilRadius(t *testing.T) {
	doc := `{"name":"origin","dynamic":{"kind":"fixed","offset":[0,0,0]}}`
	tree, err := ParseUniverse([]byte(doc), nil)
	if err != nil {
		t.Fatalf("ParseUniverse() error = %v", err)
	}
	if tree.Root().Radius != nil {
		t.Fatalf("expected nil Radius when the field is absent")
	}
}
