package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Overrides carries command line values. Empty fields leave the loaded value alone.
type Overrides struct {
	Output  string
	Mode    string
	SiteURL string
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Root is the project directory. Defaults to ".".
	Root string
	// File is an explicit config file. When empty, DefaultConfigFile in Root
	// is used if it exists.
	File string
	// SkipDotEnv disables reading .env and .env.local.
	SkipDotEnv bool
	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv    func(string) string
	Overrides Overrides
}

// Load builds the configuration: .env files, then the YAML file, then the
// environment, then overrides, then defaults and validation.
func Load(opts LoadOptions) (*BuildConfig, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if !opts.SkipDotEnv {
		if err := LoadDotEnv(root); err != nil {
			return nil, err
		}
	}

	cfg := &BuildConfig{}
	if err := loadFile(cfg, root, opts.File, getenv); err != nil {
		return nil, err
	}
	if cfg.Paths.Root == "" {
		cfg.Paths.Root = root
	} else if !filepath.IsAbs(cfg.Paths.Root) {
		cfg.Paths.Root = filepath.Join(root, cfg.Paths.Root)
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, opts.Overrides); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv reads .env then .env.local from dir into the process environment.
// Values in .env.local win over .env; variables already set are never replaced.
// Missing files are ignored.
func LoadDotEnv(dir string) error {
	var files []string
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return nil
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot parse environment file").
			Fatal().
			WithContext("files", files).
			Build()
	}
	for k, v := range values {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "cannot set environment variable").
				Fatal().
				WithContext("key", k).
				Build()
		}
	}
	return nil
}

func loadFile(cfg *BuildConfig, root, file string, getenv func(string) string) error {
	explicit := file != ""
	if !explicit {
		file = filepath.Join(root, DefaultConfigFile)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.WrapError(err, errors.CategoryConfig, "cannot read configuration file").
			Fatal().
			WithContext("path", file).
			Build()
	}

	expanded := os.Expand(string(data), getenv)
	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.WrapError(err, errors.CategoryConfig, "invalid configuration file").
			Fatal().
			WithContext("path", file).
			Build()
	}
	return nil
}

func applyEnv(cfg *BuildConfig, getenv func(string) string) error {
	if v := getenv(EnvMode); v != "" {
		cfg.Mode = ModeFromEnv(v)
	} else if cfg.Mode != "" {
		mode, err := ParseMode(string(cfg.Mode))
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid mode in configuration file").Fatal().Build()
		}
		cfg.Mode = mode
	}
	if v := getenv(EnvSiteURL); v != "" {
		cfg.SiteURL = v
	}
	if v := getenv(EnvFormEndpoint); v != "" {
		cfg.FormEndpoint = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = NormalizeLogLevel(v)
	} else if cfg.LogLevel != "" {
		cfg.LogLevel = NormalizeLogLevel(string(cfg.LogLevel))
	}
	return nil
}

func applyOverrides(cfg *BuildConfig, o Overrides) error {
	if o.Mode != "" {
		mode, err := ParseMode(o.Mode)
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid --mode").Fatal().Build()
		}
		cfg.Mode = mode
	}
	if o.Output != "" {
		cfg.Paths.Output = o.Output
	}
	if o.SiteURL != "" {
		cfg.SiteURL = o.SiteURL
	}
	return nil
}
