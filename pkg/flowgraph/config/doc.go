/*
Package config reads loosely typed configuration trees (YAML or JSON) and
extracts typed values with defaults.

Keys may be dotted paths into nested maps:

	cfg, err := config.FromFile("tablegraph.yaml")
	endpoint := cfg.String("vlm.endpoint", "http://localhost:11434/v1")
	timeout := cfg.Duration("vlm.timeout", 60*time.Second)
	retries := cfg.Int("max_retries", 3)

A missing key, or a value of the wrong type, yields the default.

Duration accepts a time.ParseDuration string, or a number of seconds.
Int accepts whole floats, as produced by JSON decoding.

Environment overrides are applied with WithEnv. TABLEGRAPH_VLM_ENDPOINT
overrides "vlm.endpoint".
*/
package config
