package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// configLoader reads a configuration file in TOML or YAML. Keys name global
// flags ("log-level" or "log_level"); nested tables are joined with dashes,
// so [log] level = "debug" sets --log-level.
func configLoader(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	if tomlErr := toml.Unmarshal(data, &raw); tomlErr != nil {
		raw = map[string]any{}
		if yamlErr := yaml.Unmarshal(data, &raw); yamlErr != nil {
			return nil, fmt.Errorf("config is neither TOML (%v) nor YAML (%v)", tomlErr, yamlErr)
		}
	}

	values := map[string]any{}
	flatten("", raw, values)

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		if v, ok := values[flag.Name]; ok {
			return v, nil
		}
		return values[strings.ReplaceAll(flag.Name, "-", "_")], nil
	}), nil
}

// flatten copies nested tables into out with dash-joined keys. Scalars are
// converted to strings so every flag type can decode them.
func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "-" + k
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(key, v, out)
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}
