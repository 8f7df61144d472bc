package channelspec

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const SpecSchemaV1 = "lodestar.channels.v1"

// Spec declares the channel signature of a pipeline step: which channels it
// binds, what artifact type each carries, how many artifacts are allowed
// and which splits must be resolvable.
type Spec struct {
	Schema   string    `json:"schema" yaml:"schema"`
	Channels []Channel `json:"channels" yaml:"channels"`
}

type Channel struct {
	Name           string   `json:"name" yaml:"name"`
	ArtifactType   string   `json:"artifact_type" yaml:"artifact_type"`
	MinCount       int      `json:"min_count,omitempty" yaml:"min_count,omitempty"`
	MaxCount       int      `json:"max_count,omitempty" yaml:"max_count,omitempty"`
	RequiredSplits []string `json:"required_splits,omitempty" yaml:"required_splits,omitempty"`
}

// ParseSpec decodes and structurally validates a YAML channel signature.
func ParseSpec(input []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(input, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func (s Spec) Validate() error {
	if strings.TrimSpace(s.Schema) != SpecSchemaV1 {
		return fmt.Errorf("spec.schema must be %q", SpecSchemaV1)
	}
	if len(s.Channels) == 0 {
		return errors.New("spec.channels must be non-empty")
	}
	seen := make(map[string]struct{}, len(s.Channels))
	for i, channel := range s.Channels {
		name := strings.TrimSpace(channel.Name)
		if name == "" {
			return fmt.Errorf("channels[%d].name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("channels[%d].name %q is declared twice", i, name)
		}
		seen[name] = struct{}{}
		if strings.TrimSpace(channel.ArtifactType) == "" {
			return fmt.Errorf("channels[%d].artifact_type is required", i)
		}
		if channel.MinCount < 0 {
			return fmt.Errorf("channels[%d].min_count must be >= 0", i)
		}
		if channel.MaxCount > 0 && channel.MaxCount < channel.MinCount {
			return fmt.Errorf("channels[%d].max_count must be >= min_count", i)
		}
	}
	return nil
}

// ChannelByName returns the declared channel with the given name.
func (s Spec) ChannelByName(name string) (Channel, bool) {
	for _, channel := range s.Channels {
		if channel.Name == name {
			return channel, true
		}
	}
	return Channel{}, false
}
