package channelspec

import (
	"fmt"
	"strings"

	"github.com/lodestar-ml/lodestar-go/internal/artifactset"
	"github.com/lodestar-ml/lodestar-go/internal/domain"
)

// ValidationError aggregates the issues found when checking an artifact set
// against a channel signature.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "channel validation failed"
	}
	return "channel validation failed: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	if strings.TrimSpace(issue) == "" {
		return
	}
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// ValidateSet checks an artifact set against the declared signature:
// declared channels must be present with a count inside [min, max], every
// artifact must carry the declared type, required splits must resolve to
// exactly one artifact, and undeclared channels are rejected.
func ValidateSet(spec Spec, set domain.ArtifactSet) error {
	verr := &ValidationError{}

	for _, channel := range spec.Channels {
		artifacts, ok := set[channel.Name]
		if !ok {
			if channel.MinCount > 0 {
				verr.Add(fmt.Sprintf("channel %q is missing", channel.Name))
			}
			continue
		}
		if len(artifacts) < channel.MinCount {
			verr.Add(fmt.Sprintf("channel %q has %d artifacts, needs at least %d", channel.Name, len(artifacts), channel.MinCount))
		}
		if channel.MaxCount > 0 && len(artifacts) > channel.MaxCount {
			verr.Add(fmt.Sprintf("channel %q has %d artifacts, allows at most %d", channel.Name, len(artifacts), channel.MaxCount))
		}
		for i, artifact := range artifacts {
			if artifact.Type != channel.ArtifactType {
				verr.Add(fmt.Sprintf("channel %q artifact %d has type %q, declared %q", channel.Name, i, artifact.Type, channel.ArtifactType))
			}
		}
		for _, split := range channel.RequiredSplits {
			if _, err := artifactset.SplitURI(artifacts, split); err != nil {
				verr.Add(fmt.Sprintf("channel %q split %q: %v", channel.Name, split, err))
			}
		}
	}

	for name := range set {
		if _, declared := spec.ChannelByName(name); !declared {
			verr.Add(fmt.Sprintf("channel %q is not declared in the signature", name))
		}
	}

	return verr.OrNil()
}
