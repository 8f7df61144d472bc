package artifactset

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lodestar-ml/lodestar-go/internal/domain"
)

// errNullValue guards the JSON null literal, which encoding/json otherwise
// decodes into a nil map or slice without error.
var errNullValue = errors.New("got JSON null")

// Marshal serializes a channel→artifacts mapping as a single JSON object
// whose keys are channel names and whose values are arrays of per-artifact
// JSON objects. Per-channel order is preserved; this is a pure structural
// transform with no validation beyond the artifact projection itself.
func Marshal(set domain.ArtifactSet) ([]byte, error) {
	out := make(map[string][]json.RawMessage, len(set))
	for channel, artifacts := range set {
		list := make([]json.RawMessage, 0, len(artifacts))
		for _, artifact := range artifacts {
			raw, err := artifact.ToJSON()
			if err != nil {
				return nil, fmt.Errorf("channel %q: %w", channel, err)
			}
			list = append(list, raw)
		}
		out[channel] = list
	}
	return json.Marshal(out)
}

// Unmarshal parses serialized collection text back into a channel→artifacts
// mapping. The whole call fails on the first malformed entry; the error
// names the channel and index so a corrupted persisted record can be
// located. Per-channel order is preserved; key order carries no meaning.
func Unmarshal(text []byte) (domain.ArtifactSet, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(text, &root); err != nil {
		return nil, &FormatError{Index: -1, Err: err}
	}
	if root == nil {
		return nil, &FormatError{Index: -1, Err: errNullValue}
	}
	set := make(domain.ArtifactSet, len(root))
	for channel, rawList := range root {
		var entries []json.RawMessage
		if err := json.Unmarshal(rawList, &entries); err != nil {
			return nil, &FormatError{Channel: channel, Index: -1, Err: err}
		}
		if entries == nil {
			return nil, &FormatError{Channel: channel, Index: -1, Err: errNullValue}
		}
		artifacts := make([]domain.Artifact, 0, len(entries))
		for i, entry := range entries {
			artifact, err := domain.ArtifactFromJSON(entry)
			if err != nil {
				return nil, &FormatError{Channel: channel, Index: i, Err: err}
			}
			artifacts = append(artifacts, artifact)
		}
		set[channel] = artifacts
	}
	return set, nil
}
