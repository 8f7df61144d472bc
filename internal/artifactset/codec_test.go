package artifactset

import (
	"errors"
	"testing"

	"github.com/lodestar-ml/lodestar-go/internal/domain"
)

func exampleSet() domain.ArtifactSet {
	return domain.ArtifactSet{
		"examples": {
			{
				Type:       "Examples",
				URI:        "s3://pipelines/run-1/examples",
				SplitNames: "train,eval",
				Properties: map[string]domain.PropertyValue{
					"span": domain.IntValue(3),
				},
			},
			{
				Type:       "Examples",
				URI:        "s3://pipelines/run-1/examples-2",
				SplitNames: "train",
			},
		},
		"schema": {
			{
				Type: "Schema",
				URI:  "s3://pipelines/run-1/schema",
				Properties: map[string]domain.PropertyValue{
					"version":  domain.StringValue("v2"),
					"coverage": domain.DoubleValue(0.93),
				},
			},
		},
	}
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	in := exampleSet()
	text, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() err=%v", err)
	}
	out, err := Unmarshal(text)
	if err != nil {
		t.Fatalf("Unmarshal() err=%v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("channels=%d, want %d", len(out), len(in))
	}
	for channel, artifacts := range in {
		got, ok := out[channel]
		if !ok {
			t.Fatalf("channel %q missing after round trip", channel)
		}
		if len(got) != len(artifacts) {
			t.Fatalf("channel %q length=%d, want %d", channel, len(got), len(artifacts))
		}
		for i := range artifacts {
			if !got[i].Equal(artifacts[i]) {
				t.Fatalf("channel %q index %d: got %v, want %v", channel, i, got[i], artifacts[i])
			}
		}
	}
}

func TestMarshal_EmptySet(t *testing.T) {
	text, err := Marshal(domain.ArtifactSet{})
	if err != nil {
		t.Fatalf("Marshal() err=%v", err)
	}
	if string(text) != "{}" {
		t.Fatalf("Marshal()=%s, want {}", text)
	}
}

func TestUnmarshal_PreservesListOrder(t *testing.T) {
	text := []byte(`{"examples":[` +
		`{"type":"Examples","uri":"u0"},` +
		`{"type":"Examples","uri":"u1"},` +
		`{"type":"Examples","uri":"u2"}]}`)
	set, err := Unmarshal(text)
	if err != nil {
		t.Fatalf("Unmarshal() err=%v", err)
	}
	for i, want := range []string{"u0", "u1", "u2"} {
		if got := set["examples"][i].URI; got != want {
			t.Fatalf("index %d URI=%q, want %q", i, got, want)
		}
	}
}

func TestUnmarshal_RejectsInvalidJSON(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"))
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Unmarshal() err=%v, want FormatError", err)
	}
}

func TestUnmarshal_RejectsTopLevelArray(t *testing.T) {
	_, err := Unmarshal([]byte("[]"))
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Unmarshal() err=%v, want FormatError", err)
	}
}

func TestUnmarshal_RejectsBadArtifactEntryWithContext(t *testing.T) {
	_, err := Unmarshal([]byte(`{"x":[{"type":"T","uri":"u"},{"bad":true}]}`))
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Unmarshal() err=%v, want FormatError", err)
	}
	if ferr.Channel != "x" || ferr.Index != 1 {
		t.Fatalf("FormatError channel=%q index=%d, want x/1", ferr.Channel, ferr.Index)
	}
	if ferr.Unwrap() == nil {
		t.Fatalf("FormatError should wrap the underlying cause")
	}
}

func TestUnmarshal_RejectsTopLevelNull(t *testing.T) {
	_, err := Unmarshal([]byte("null"))
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Unmarshal() err=%v, want FormatError", err)
	}
	if ferr.Channel != "" || ferr.Index != -1 {
		t.Fatalf("FormatError channel=%q index=%d, want top-level", ferr.Channel, ferr.Index)
	}
}

func TestUnmarshal_RejectsNullChannel(t *testing.T) {
	_, err := Unmarshal([]byte(`{"x":null}`))
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Unmarshal() err=%v, want FormatError", err)
	}
	if ferr.Channel != "x" || ferr.Index != -1 {
		t.Fatalf("FormatError channel=%q index=%d, want x/-1", ferr.Channel, ferr.Index)
	}
}

func TestUnmarshal_AcceptsEmptyChannelArray(t *testing.T) {
	set, err := Unmarshal([]byte(`{"x":[]}`))
	if err != nil {
		t.Fatalf("Unmarshal() err=%v", err)
	}
	if got, ok := set["x"]; !ok || len(got) != 0 {
		t.Fatalf("set[x]=%v ok=%v, want present empty list", got, ok)
	}
}

func TestUnmarshal_RejectsNonArrayChannel(t *testing.T) {
	_, err := Unmarshal([]byte(`{"x":{"type":"T"}}`))
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Unmarshal() err=%v, want FormatError", err)
	}
	if ferr.Channel != "x" {
		t.Fatalf("FormatError channel=%q, want x", ferr.Channel)
	}
}
