package config

import (
	_ "embed"
	"fmt"
	"os"

	"electromatrix/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed pools.yaml
var defaultPools []byte

type poolsFile struct {
	Pools []model.PromptPool `yaml:"pools"`
}

// LoadPools reads the labelled prompt pools from path, or the built-in set
// when path is empty.
func LoadPools(path string) ([]model.PromptPool, error) {
	data := defaultPools
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading pools file: %w", err)
		}
		data = b
	}
	return ParsePools(data)
}

// ParsePools decodes a pools document and checks it is usable
func ParsePools(data []byte) ([]model.PromptPool, error) {
	var f poolsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding pools: %w", err)
	}

	total := 0
	seen := make(map[string]bool, len(f.Pools))
	for _, p := range f.Pools {
		if p.Label == "" {
			return nil, fmt.Errorf("pool without label")
		}
		if seen[p.Label] {
			return nil, fmt.Errorf("duplicate pool label %q", p.Label)
		}
		if p.Take < 0 {
			return nil, fmt.Errorf("pool %q: negative take", p.Label)
		}
		seen[p.Label] = true
		total += p.Take
	}
	if total > 6 {
		return nil, fmt.Errorf("pools take %d questions, a grid has 6 cells", total)
	}
	return f.Pools, nil
}
