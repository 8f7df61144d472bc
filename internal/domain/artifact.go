package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Artifact is a typed reference to a unit of pipeline data. URI points at
// the backing location (may be empty before materialization), SplitNames
// holds the encoded comma-delimited split list, and Properties carries any
// further typed fields the producing step recorded.
type Artifact struct {
	Type       string
	URI        string
	SplitNames string
	Properties map[string]PropertyValue
}

// ArtifactSet maps a channel name to its bound ordered artifact list.
// Order within a list is significant; key order is not.
type ArtifactSet map[string][]Artifact

func (s ArtifactSet) Clone() ArtifactSet {
	if s == nil {
		return ArtifactSet{}
	}
	out := make(ArtifactSet, len(s))
	for channel, artifacts := range s {
		list := make([]Artifact, len(artifacts))
		copy(list, artifacts)
		out[channel] = list
	}
	return out
}

func (a Artifact) String() string {
	return fmt.Sprintf("Artifact(type=%s, uri=%s, split_names=%s)", a.Type, a.URI, a.SplitNames)
}

// Equal reports field-for-field equality including properties.
func (a Artifact) Equal(b Artifact) bool {
	if a.Type != b.Type || a.URI != b.URI || a.SplitNames != b.SplitNames {
		return false
	}
	if len(a.Properties) != len(b.Properties) {
		return false
	}
	for name, value := range a.Properties {
		other, ok := b.Properties[name]
		if !ok || value != other {
			return false
		}
	}
	return true
}

type artifactPayload struct {
	Type       string                   `json:"type"`
	URI        string                   `json:"uri"`
	SplitNames string                   `json:"split_names,omitempty"`
	Properties map[string]PropertyValue `json:"properties,omitempty"`
}

// ToJSON is the artifact's explicit JSON projection. Round-trips through
// ArtifactFromJSON field for field.
func (a Artifact) ToJSON() (json.RawMessage, error) {
	payload := artifactPayload{
		Type:       a.Type,
		URI:        a.URI,
		SplitNames: a.SplitNames,
		Properties: a.Properties,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return raw, nil
}

// ArtifactFromJSON parses a single artifact JSON object. The input must be
// a JSON object with a non-empty type field; property values must be
// well-formed one-key unions.
func ArtifactFromJSON(raw json.RawMessage) (Artifact, error) {
	var payload artifactPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	if strings.TrimSpace(payload.Type) == "" {
		return Artifact{}, fmt.Errorf("decode artifact: type is required")
	}
	return Artifact{
		Type:       payload.Type,
		URI:        payload.URI,
		SplitNames: payload.SplitNames,
		Properties: payload.Properties,
	}, nil
}

// PropertyNames returns the artifact's property names in sorted order.
func (a Artifact) PropertyNames() []string {
	names := make([]string, 0, len(a.Properties))
	for name := range a.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
