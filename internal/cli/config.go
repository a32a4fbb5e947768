package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/requisition/client"
)

// loadConfig reads default request configuration from a YAML file:
//
//	headers:
//	  Accept: application/json
//	query:
//	  api_version: "2"
//	timeout: 10s
//	redirects: 5
func loadConfig(path string) (client.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg client.Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return client.Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return client.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
