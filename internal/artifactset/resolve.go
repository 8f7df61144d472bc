package artifactset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lodestar-ml/lodestar-go/internal/domain"
)

// resolveUnique collects the artifacts satisfying match and returns the
// sole survivor. Any other count yields a CardinalityError carrying the
// message built by describe; this layer never picks an element on the
// caller's behalf.
func resolveUnique(artifacts []domain.Artifact, match func(domain.Artifact) bool, describe func(matches []domain.Artifact) string) (domain.Artifact, error) {
	var matches []domain.Artifact
	for _, artifact := range artifacts {
		if match(artifact) {
			matches = append(matches, artifact)
		}
	}
	if len(matches) != 1 {
		return domain.Artifact{}, &CardinalityError{Count: len(matches), Message: describe(matches)}
	}
	return matches[0], nil
}

// Single returns the sole artifact of a list expected to have length one.
func Single(artifacts []domain.Artifact) (domain.Artifact, error) {
	return resolveUnique(artifacts,
		func(domain.Artifact) bool { return true },
		func([]domain.Artifact) string {
			return fmt.Sprintf("expected artifact list of length one but got %d", len(artifacts))
		})
}

// SingleURI returns the URI of the sole artifact of a list expected to
// have length one.
func SingleURI(artifacts []domain.Artifact) (string, error) {
	artifact, err := Single(artifacts)
	if err != nil {
		return "", err
	}
	return artifact.URI, nil
}

// SplitURI resolves the one artifact in the list that declares the given
// split and returns its URI joined with the split as a path segment.
func SplitURI(artifacts []domain.Artifact, split string) (string, error) {
	artifact, err := resolveUnique(artifacts,
		func(a domain.Artifact) bool {
			return slices.Contains(DecodeSplitNames(a.SplitNames), split)
		},
		func(matches []domain.Artifact) string {
			return fmt.Sprintf("expected exactly one artifact with split %q, but found matching artifacts %s", split, renderArtifacts(matches))
		})
	if err != nil {
		return "", err
	}
	return JoinURI(artifact.URI, split), nil
}

// JoinURI appends a path segment to an artifact URI. The separator is
// always "/", and a trailing separator on the base is tolerated so that
// "s3://b/x" and "s3://b/x/" join identically.
func JoinURI(base, segment string) string {
	if base == "" {
		return segment
	}
	return strings.TrimRight(base, "/") + "/" + segment
}

func renderArtifacts(artifacts []domain.Artifact) string {
	if len(artifacts) == 0 {
		return "[]"
	}
	rendered := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		rendered = append(rendered, artifact.String())
	}
	return "[" + strings.Join(rendered, ", ") + "]"
}
