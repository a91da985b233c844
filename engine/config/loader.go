package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for a file extension with no decoder.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Format names an encoding a Config can be read from.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// DecodeFunc decodes the whole of r into v.
type DecodeFunc func(r io.Reader, v any) error

var decoders = map[Format]DecodeFunc{
	FormatTOML: func(r io.Reader, v any) error {
		return toml.NewDecoder(r).DisallowUnknownFields().Decode(v)
	},
	FormatYAML: func(r io.Reader, v any) error {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err := dec.Decode(v)
		if errors.Is(err, io.EOF) {
			// an empty document keeps the defaults
			return nil
		}
		return err
	},
}

// FormatOf picks the format from a file extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the format
//   - error: ErrUnsupportedFormat for anything other than .toml, .yaml or .yml
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// Load reads a config file on top of Default and validates the result.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the loaded configuration
//   - error: ErrUnsupportedFormat, a read or decode error, or a Validate failure
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := Read(bufio.NewReader(f), format)
	if err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Read decodes a config in the given format on top of Default and validates the result.
//
// Parameters:
//   - r: the encoded config
//   - format: FormatTOML or FormatYAML
//
// Returns:
//   - Config: the decoded configuration
//   - error: ErrUnsupportedFormat, a decode error, or a Validate failure
func Read(r io.Reader, format Format) (Config, error) {
	decode, ok := decoders[format]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	cfg := Default()
	if err := decode(r, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
