package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/reactcs/create-react-cs/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyDefaultType    = "defaultType"
	KeyTemplates      = "templates"
	KeyRegistry       = "registry"
	KeyPackageManager = "packageManager"
)

// Built-in defaults, used when neither the config file nor the environment
// sets a key.
const (
	DefaultTemplate       = "cra-template"
	DefaultPackageManager = "npm"
)

// DefaultTemplates is the allow-list used when none is configured.
var DefaultTemplates = []string{"cra-template", "cra-template-typescript"}

// ErrUnknownTemplate is returned when a requested template is not in the
// configured list.
var ErrUnknownTemplate = errors.New("unknown template")

// Settings is the resolved configuration consumed by the scaffold pipeline.
type Settings struct {
	DefaultType    string
	Templates      []string
	Registry       string
	PackageManager string
}

var v = viper.New()

// Dir returns the path to the config directory (~/.create-react-cs/).
func Dir() string {
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Load initializes settings from the config file at path (FilePath() when
// empty) and from the environment. A missing file is not an error; a file
// that exists but cannot be parsed is.
func Load(path string) error {
	if path == "" {
		path = FilePath()
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expanding config path %s: %w", path, err)
	}

	v = viper.New()
	v.SetConfigFile(expanded)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	v.SetDefault(KeyDefaultType, DefaultTemplate)
	v.SetDefault(KeyTemplates, DefaultTemplates)
	v.SetDefault(KeyRegistry, branding.RegistryURL())
	v.SetDefault(KeyPackageManager, DefaultPackageManager)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(expanded); os.IsNotExist(statErr) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", expanded, err)
	}
	return nil
}

// Current returns the settings resolved by the last Load.
func Current() Settings {
	return Settings{
		DefaultType:    v.GetString(KeyDefaultType),
		Templates:      v.GetStringSlice(KeyTemplates),
		Registry:       strings.TrimRight(v.GetString(KeyRegistry), "/"),
		PackageManager: v.GetString(KeyPackageManager),
	}
}

// Get returns a config value by key as a display string.
func Get(key string) string {
	if strings.EqualFold(key, KeyTemplates) {
		return strings.Join(v.GetStringSlice(key), ",")
	}
	return v.GetString(key)
}

// Set writes a config key-value pair and saves the config file. The
// templates key takes a comma-separated list.
func Set(key, value string) error {
	if strings.EqualFold(key, KeyTemplates) {
		var list []string
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				list = append(list, t)
			}
		}
		v.Set(key, list)
	} else {
		v.Set(key, value)
	}

	configFile := v.ConfigFileUsed()
	if configFile == "" {
		configFile = FilePath()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(configFile), err)
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Unset removes key from the config file so its default applies again.
// Removing a key that was never set is not an error.
func Unset(key string) error {
	configFile := v.ConfigFileUsed()
	if configFile == "" {
		configFile = FilePath()
	}

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parsing config file %s: %w", configFile, err)
	}
	found := false
	for k := range values {
		// viper lowercases keys when it writes the file.
		if strings.EqualFold(k, key) {
			delete(values, k)
			found = true
		}
	}
	if !found {
		return nil
	}

	out, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(configFile, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return Load(configFile)
}

// ResolveTemplate returns the template identifier to use. An empty request
// selects the default type; anything else must appear in the templates list.
func (s Settings) ResolveTemplate(requested string) (string, error) {
	if requested == "" {
		if s.DefaultType == "" {
			return DefaultTemplate, nil
		}
		return s.DefaultType, nil
	}
	if !slices.Contains(s.Templates, requested) {
		return "", fmt.Errorf("%w %q: choose one of %s", ErrUnknownTemplate, requested, strings.Join(s.Templates, ", "))
	}
	return requested, nil
}
