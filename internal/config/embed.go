package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/versync.toml
var starterConfig []byte

// StarterContent returns the starter configuration written by `versync init`.
func StarterContent() string {
	return string(starterConfig)
}

// rawBytesProvider implements koanf.Provider for in-memory bytes.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }

func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
