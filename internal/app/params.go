package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/paykit/pkg/resource"
	"gopkg.in/yaml.v3"
)

// LoadParams reads request parameters from a YAML or JSON file. Files with
// an unknown extension are parsed as YAML, which also accepts JSON.
func LoadParams(path string) (resource.Params, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return resource.Params{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}

	var params map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()
		if err := dec.Decode(&params); err != nil {
			return nil, fmt.Errorf("decode json params: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decode yaml params: %w", err)
	}

	if params == nil {
		params = map[string]any{}
	}
	return resource.Params(params), nil
}

// ParseKeyValues turns k=v pairs into a string map. Values may be empty.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", p)
		}
		out[k] = v
	}
	return out, nil
}
