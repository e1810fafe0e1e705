package config

import (
	"github.com/pelletier/go-toml/v2"
)

// tomlParser adapts go-toml to the koanf.Parser interface.
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(o map[string]any) ([]byte, error) {
	return toml.Marshal(o)
}
