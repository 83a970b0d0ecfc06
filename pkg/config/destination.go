package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

// Destination is the persisted destination-database document. It is loaded
// once at startup and overwritten on save.
type Destination struct {
	Host     string `koanf:"host" json:"host" validate:"required"`
	Port     int    `koanf:"port" json:"port" default:"3306" validate:"min=1,max=65535"`
	Database string `koanf:"database" json:"database" validate:"required"`
	User     string `koanf:"user" json:"user" validate:"required"`
	Password string `koanf:"password" json:"password,omitempty"`
}

const envPrefix = "WARRAQ_"

func destinationConfigFilePath() string {
	configDir := os.Getenv("CONFIG_DIRECTORY")
	if configDir == "" {
		configDir = "/config"
	}

	return filepath.Join(configDir, "warraq.yaml")
}

// LoadDestination merges struct defaults, the YAML document at path (if it
// exists), and WARRAQ_* environment overrides into dest, then validates the
// result. Fields already set on dest survive unless the document or the
// environment overrides them.
func LoadDestination(path string, dest *Destination) error {
	if err := defaults.Set(dest); err != nil {
		return errors.WithStack(err)
	}

	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return errors.Wrapf(err, "load destination config %s", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.WithStack(err)
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := k.Unmarshal("", dest); err != nil {
		return errors.WithStack(err)
	}

	if err := validator.New().Struct(dest); err != nil {
		return errors.Wrap(err, "invalid destination config")
	}

	return nil
}

// SaveDestination overwrites the document at path with the given settings.
func SaveDestination(dest *Destination, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithStack(err)
	}

	data, err := yamlv3.Marshal(dest)
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.WriteFile(path, data, 0600)
	return errors.WithStack(err)
}
