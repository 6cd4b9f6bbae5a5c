// Package config loads connection profiles for ADT systems.
//
// Profiles live in a YAML file:
//
//	default: dev
//	profiles:
//	  dev:
//	    url: https://vhcala4hci:44300
//	    user: DEVELOPER
//	    client: "001"
//	    timeout: 90s
//
// Every profile key can be overridden from the environment with an ADT_
// prefix (ADT_URL, ADT_PASSWORD, ADT_TIMEOUT, ...). ADT_PROFILE selects
// the profile when none is named explicitly.
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment overrides.
const EnvPrefix = "ADT_"

// DefaultTimeout is used when a profile sets none.
const DefaultTimeout = 2 * time.Minute

var (
	// ErrNoProfile is returned when the requested profile does not exist.
	ErrNoProfile = errors.New("no such profile")
	// ErrInvalid is returned when a profile fails validation.
	ErrInvalid = errors.New("invalid profile")
)

// Profile describes one system connection.
type Profile struct {
	Name     string        `mapstructure:"-"`
	URL      string        `mapstructure:"url"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Client   string        `mapstructure:"client"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Insecure bool          `mapstructure:"insecure"`

	// Version selects versioned field spellings, such as "v2" for the
	// ABAP language version attribute of newer systems.
	Version string `mapstructure:"version"`

	// Transport is the default transport request for changes.
	Transport string `mapstructure:"transport"`

	ProtocolLog string `mapstructure:"protocol_log"`
	MetricsFile string `mapstructure:"metrics_file"`
	LogLevel    string `mapstructure:"log_level"`
}

// keys lists the profile keys, which are also the env override names.
var keys = []string{
	"url", "user", "password", "client", "language", "timeout", "insecure",
	"version", "transport", "protocol_log", "metrics_file", "log_level",
}

// File is a parsed profiles file.
type File struct {
	Default  string
	profiles map[string]map[string]any
}

// DefaultPath returns the profiles file location below the user config
// directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "adt.yaml"
	}
	return filepath.Join(dir, "adt", "config.yaml")
}

// Load reads a profiles file. A missing file yields an empty File, so
// profiles can come from the environment alone.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{profiles: map[string]map[string]any{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses the YAML content of a profiles file.
func Parse(data []byte) (*File, error) {
	var raw struct {
		Default  string                    `yaml:"default"`
		Profiles map[string]map[string]any `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if raw.Profiles == nil {
		raw.Profiles = map[string]map[string]any{}
	}
	if raw.Default != "" {
		if _, ok := raw.Profiles[raw.Default]; !ok {
			return nil, fmt.Errorf("default %q: %w", raw.Default, ErrNoProfile)
		}
	}
	return &File{Default: raw.Default, profiles: raw.Profiles}, nil
}

// Names returns the profile names, sorted.
func (f *File) Names() []string {
	return slices.Sorted(maps.Keys(f.profiles))
}

// Resolve selects a profile, applies environment overrides and validates
// the result. The profile is chosen by name, then ADT_PROFILE, then the
// file default, then the only profile of the file. lookup is usually
// os.LookupEnv.
func (f *File) Resolve(name string, lookup func(string) (string, bool)) (Profile, error) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	if name == "" {
		name, _ = lookup(EnvPrefix + "PROFILE")
	}
	if name == "" {
		name = f.Default
	}
	if name == "" && len(f.profiles) == 1 {
		name = f.Names()[0]
	}

	values := map[string]any{}
	if name != "" {
		p, ok := f.profiles[name]
		if !ok {
			return Profile{}, fmt.Errorf("%q: %w", name, ErrNoProfile)
		}
		maps.Copy(values, p)
	}
	for _, k := range keys {
		if v, ok := lookup(EnvPrefix + strings.ToUpper(k)); ok {
			values[k] = v
		}
	}

	p, err := decode(values)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	p.Name = name
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func decode(values map[string]any) (Profile, error) {
	p := Profile{Timeout: DefaultTimeout, Language: "EN", LogLevel: "info"}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &p,
	})
	if err != nil {
		return Profile{}, err
	}
	if err := dec.Decode(values); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks that the profile can be used to connect.
func (p Profile) Validate() error {
	var errs []error
	if p.URL == "" {
		errs = append(errs, errors.New("url is required"))
	} else if u, err := url.Parse(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("url %q is not an http(s) URL", p.URL))
	}
	if p.Client != "" && (len(p.Client) != 3 || strings.Trim(p.Client, "0123456789") != "") {
		errs = append(errs, fmt.Errorf("client %q must be three digits", p.Client))
	}
	if p.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %v is negative", p.Timeout))
	}
	switch strings.ToLower(p.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", p.LogLevel))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalid, p.Name, errors.Join(errs...))
}
