package thistle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config configures an Engine. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	// Delimiters of interpolated expressions. An empty value selects the
	// default for that delimiter.
	StartSymbol string `yaml:"start_symbol" toml:"start_symbol"`
	EndSymbol   string `yaml:"end_symbol" toml:"end_symbol"`
	// Whether thi-if, thi-repeat and thi-switch are available.
	StandardDirectives bool `yaml:"standard_directives" toml:"standard_directives"`
	// Whether the filters of package filters are available.
	StandardFilters bool `yaml:"standard_filters" toml:"standard_filters"`
	// Number of compiled templates Render keeps. 0 disables caching.
	CacheSize int `yaml:"cache_size" toml:"cache_size"`
}

// DefaultCacheSize is the default value of Config.CacheSize.
const DefaultCacheSize = 128

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StartSymbol:        "{{",
		EndSymbol:          "}}",
		StandardDirectives: true,
		StandardFilters:    true,
		CacheSize:          DefaultCacheSize,
	}
}

// LoadConfig reads a YAML (.yaml or .yml) or TOML (.toml) file. Settings
// missing from the file keep their default values; unknown settings are an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%s: unknown setting %s", path, undecoded[0])
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	return cfg, nil
}
