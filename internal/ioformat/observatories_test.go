package ioformat

import "testing"

const sampleObservatories = `[
  {"name": "greenwich", "body_id": [0], "location": {"r": 1, "theta": 0.1, "phi": 0.2}},
  {"name": "", "body_id": [0, 1], "location": {"r": 1, "theta": 1.5, "phi": 3.0}}
]`

func TestParseObservatories(t *testing.T) {
	obs, err := ParseObservatories([]byte(sampleObservatories))
	if err != nil {
		t.Fatalf("ParseObservatories() error = %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observatories, got %d", len(obs))
	}
	if obs[0].Name != "greenwich" || !obs[0].Host.Equal([]int{0}) {
		t.Fatalf("unexpected first observatory: %+v", obs[0])
	}
	if !obs[1].Host.Equal([]int{0, 1}) {
		t.Fatalf("unexpected second observatory host: %v", obs[1].Host)
	}
}

func TestParseObservatoriesRejectsUnknownField(t *testing.T) {
	bad := `[{"name":"x","body_id":[0],"location":{"r":1,"theta":0,"phi":0},"bogus":1}]`
	if _, err := ParseObservatories([]byte(bad)); err == nil {
		t.Fatalf("expected an error for an unknown field")
	}
}

const sampleObservatoriesWithConstellations = `[
  {"name": "greenwich", "body_id": [0], "location": {"r": 1, "theta": 0.1, "phi": 0.2},
   "constellations": [
     {"name": "triangle", "edges": [{"a": [0, 1], "b": [0, 2]}, {"a": [0, 2], "b": [0, 3]}]}
   ]}
]`

func TestParseObservatoriesReadsConstellations(t *testing.T) {
	obs, err := ParseObservatories([]byte(sampleObservatoriesWithConstellations))
	if err != nil {
		t.Fatalf("ParseObservatories() error = %v", err)
	}
	if len(obs[0].Constellations) != 1 {
		t.Fatalf("expected 1 constellation, got %d", len(obs[0].Constellations))
	}
	c := obs[0].Constellations[0]
	if c.Name != "triangle" || len(c.Edges) != 2 {
		t.Fatalf("unexpected constellation: %+v", c)
	}
	if !c.Edges[0].A.Equal([]int{0, 1}) || !c.Edges[0].B.Equal([]int{0, 2}) {
		t.Fatalf("unexpected first edge: %+v", c.Edges[0])
	}
}

func TestParseObservatoriesRejectsUnknownEdgeField(t *testing.T) {
	bad := `[{"name":"x","body_id":[0],"location":{"r":1,"theta":0,"phi":0},
	  "constellations":[{"name":"c","edges":[{"a":[0],"b":[1],"bogus":true}]}]}]`
	if _, err := ParseObservatories([]byte(bad)); err == nil {
		t.Fatalf("expected an error for an unknown edge field")
	}
}

func TestMarshalObservatoriesRoundTripsConstellations(t *testing.T) {
	obs, err := ParseObservatories([]byte(sampleObservatoriesWithConstellations))
	if err != nil {
		t.Fatalf("ParseObservatories() error = %v", err)
	}
	out, err := MarshalObservatories(obs)
	if err != nil {
		t.Fatalf("MarshalObservatories() error = %v", err)
	}
	reparsed, err := ParseObservatories(out)
	if err != nil {
		t.Fatalf("ParseObservatories(round-trip) error = %v", err)
	}
	if len(reparsed[0].Constellations) != 1 || len(reparsed[0].Constellations[0].Edges) != 2 {
		t.Fatalf("round trip lost constellation data: %+v", reparsed[0].Constellations)
	}
}

func TestMarshalObservatoriesRoundTrips(t *testing.T) {
	obs, err := ParseObservatories([]byte(sampleObservatories))
	if err != nil {
		t.Fatalf("ParseObservatories() error = %v", err)
	}
	out, err := MarshalObservatories(obs)
	if err != nil {
		t.Fatalf("MarshalObservatories() error = %v", err)
	}
	reparsed, err := ParseObservatories(out)
	if err != nil {
		t.Fatalf("ParseObservatories(round-trip) error = %v", err)
	}
	if len(reparsed) != len(obs) {
		t.Fatalf("round trip changed the observatory count")
	}
}
