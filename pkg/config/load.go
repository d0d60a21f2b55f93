package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ailegion/database-plugins/pkg/dberrors"
)

// LoadFile reads a YAML configuration file into the target struct.
func LoadFile(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return dberrors.Wrap(err, dberrors.ErrorTypeConfiguration,
			"failed to read config file").WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return dberrors.Wrap(err, dberrors.ErrorTypeConfiguration,
			"failed to parse config file").WithDetail("path", path)
	}
	return nil
}
