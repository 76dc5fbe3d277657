package config

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// FromFile loads config from the TOML file at path, laid over def.
func FromFile(path string, def *Harvester) (*Harvester, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.ErrDecodeConfigFailed, err)
	}
	defer file.Close() //nolint:errcheck

	return FromReader(file, def)
}

// FromReader loads config from a reader instance.  Environment variables
// prefixed with CS_HARVESTER override values from the reader.
func FromReader(reader io.Reader, def *Harvester) (*Harvester, error) {
	cfg := def
	_, err := toml.NewDecoder(reader).Decode(cfg)
	if err != nil {
		return nil, types.Wrap(types.ErrDecodeConfigFailed, err)
	}

	err = envconfig.Process("CS_HARVESTER", cfg)
	if err != nil {
		return nil, types.Wrapf(types.ErrInvalidConfig, "processing env var overrides: %v", err)
	}

	return cfg, nil
}

// ConfigComment renders cfg as TOML with every value line commented out,
// suitable for writing an editable default config.
func ConfigComment(cfg interface{}) ([]byte, error) {
	b, err := ConfigBytes(cfg)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, line := range strings.Split(string(b), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '[' {
			out = append(out, line)
			continue
		}

		pad := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		out = append(out, pad+"#"+line[len(pad):])
	}

	return []byte(strings.Join(out, "\n")), nil
}
