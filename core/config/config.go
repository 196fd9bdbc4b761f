package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/hybridsh/core/display"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const ConfigurationName = "config.yaml"

type Configuration struct {
	configFs afero.Fs

	Dialect            string `json:"dialect" validate:"required,oneof=csharp lua"`
	Prompt             string `json:"prompt"`
	ContinuationPrompt string `json:"continuation_prompt"`
	HistoryFile        string `json:"history_file"`
	LogLevel           string `json:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Color              string `json:"color" validate:"omitempty,colormode"`

	ExtraKeywords []string `json:"extra_keywords" validate:"unique,dive,required"`
	Imports       []string `json:"imports" validate:"unique,dive,required"`

	Shell Shell `json:"shell"`
}

type Shell struct {
	InheritEnv bool `json:"inherit_env"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	if err := validate.RegisterValidation("colormode", isColorMode); err != nil {
		return err
	}

	return validate.Struct(c)
}

func isColorMode(fl validator.FieldLevel) bool {
	return slices.Contains(display.ColorModes, fl.Field().String())
}

// ColorMode returns the color setting, auto if unset.
func (c *Configuration) ColorMode() string {
	if c.Color == "" {
		return display.ColorAuto
	}
	return c.Color
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewMemMapFs()
	}
	return c.configFs
}

// OpenHistory opens the REPL history file for appending, ok is false if
// history is disabled.
func (c *Configuration) OpenHistory() (file afero.File, ok bool, err error) {
	if c.HistoryFile == "" {
		return nil, false, nil
	}
	file, err = c.fs().OpenFile(c.HistoryFile, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0600)
	return file, err == nil, err
}

// ReadHistory returns the saved history lines, oldest first.
func (c *Configuration) ReadHistory() ([]string, error) {
	if c.HistoryFile == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(c.fs(), c.HistoryFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// Default returns the built-in configuration.
func Default() *Configuration {
	return defaultConfig()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
