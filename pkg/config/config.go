// Package config loads the gateway configuration.
//
// The configuration is a key=value properties file. A path ending in
// .yaml or .yml is read as YAML with the same keys instead. A missing
// file is created with the defaults.
//
// Keys:
//
//	obs_ws_url            obs-websocket URL (ws://127.0.0.1:4455)
//	obs_ws_password       obs-websocket password (empty: no auth)
//	obs_input_name        OBS text source to drive (Subtitle)
//	line_max_chars        wrap width in characters (13)
//	min_seconds_per_char  display time per visible character (0.25)
//	listen_addr           HTTP listen address (127.0.0.1:8765)
//	handshake_timeout_ms  bound on dial and handshake (10000)
//	request_timeout_ms    bound on each request's response (10000)
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/miqbot/obs-subtitles/pkg/control"
	"github.com/miqbot/obs-subtitles/pkg/subtitle"
)

// Configuration keys.
const (
	KeyOBSURL             = "obs_ws_url"
	KeyOBSPassword        = "obs_ws_password"
	KeyInputName          = "obs_input_name"
	KeyLineMaxChars       = "line_max_chars"
	KeyMinSecondsPerChar  = "min_seconds_per_char"
	KeyListenAddr         = "listen_addr"
	KeyHandshakeTimeoutMS = "handshake_timeout_ms"
	KeyRequestTimeoutMS   = "request_timeout_ms"
)

// Config is the gateway configuration.
type Config struct {
	OBSURL             string  `yaml:"obs_ws_url"`
	OBSPassword        string  `yaml:"obs_ws_password"`
	InputName          string  `yaml:"obs_input_name"`
	LineMaxChars       int     `yaml:"line_max_chars"`
	MinSecondsPerChar  float64 `yaml:"min_seconds_per_char"`
	ListenAddr         string  `yaml:"listen_addr"`
	HandshakeTimeoutMS int     `yaml:"handshake_timeout_ms"`
	RequestTimeoutMS   int     `yaml:"request_timeout_ms"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		OBSURL:             "ws://127.0.0.1:4455",
		InputName:          subtitle.DefaultInputName,
		LineMaxChars:       subtitle.DefaultLineMax,
		MinSecondsPerChar:  subtitle.DefaultMinSecondsPerChar,
		ListenAddr:         "127.0.0.1:8765",
		HandshakeTimeoutMS: int(control.DefaultHandshakeTimeout / time.Millisecond),
		RequestTimeoutMS:   int(control.DefaultRequestTimeout / time.Millisecond),
	}
}

// FieldError reports an invalid configuration value.
type FieldError struct {
	Key    string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// Validate checks every field and returns all problems found.
func (c Config) Validate() error {
	var errs []error

	if c.OBSURL == "" {
		errs = append(errs, &FieldError{Key: KeyOBSURL, Reason: "must not be empty"})
	} else if u, err := url.Parse(c.OBSURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		errs = append(errs, &FieldError{Key: KeyOBSURL, Reason: fmt.Sprintf("%q is not a ws:// or wss:// URL", c.OBSURL)})
	}
	if strings.TrimSpace(c.InputName) == "" {
		errs = append(errs, &FieldError{Key: KeyInputName, Reason: "must not be empty"})
	}
	if c.LineMaxChars < 1 {
		errs = append(errs, &FieldError{Key: KeyLineMaxChars, Reason: "must be at least 1"})
	}
	switch r := c.MinSecondsPerChar; {
	case math.IsNaN(r) || math.IsInf(r, 0):
		errs = append(errs, &FieldError{Key: KeyMinSecondsPerChar, Reason: "must be a finite number"})
	case r < 0:
		errs = append(errs, &FieldError{Key: KeyMinSecondsPerChar, Reason: "must not be negative"})
	case r > subtitle.MaxSecondsPerChar:
		errs = append(errs, &FieldError{Key: KeyMinSecondsPerChar, Reason: fmt.Sprintf("must be at most %g", subtitle.MaxSecondsPerChar)})
	}
	if c.HandshakeTimeoutMS < 0 {
		errs = append(errs, &FieldError{Key: KeyHandshakeTimeoutMS, Reason: "must not be negative"})
	}
	if c.RequestTimeoutMS < 0 {
		errs = append(errs, &FieldError{Key: KeyRequestTimeoutMS, Reason: "must not be negative"})
	}

	return errors.Join(errs...)
}

// HandshakeTimeout returns the handshake bound. Zero disables it.
func (c Config) HandshakeTimeout() time.Duration {
	return timeout(c.HandshakeTimeoutMS)
}

// RequestTimeout returns the per-request bound. Zero disables it.
func (c Config) RequestTimeout() time.Duration {
	return timeout(c.RequestTimeoutMS)
}

// timeout maps a millisecond setting onto the client's convention, where
// a negative duration disables the bound and zero selects the default.
func timeout(ms int) time.Duration {
	if ms == 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

// Control returns the control channel settings. Loggers are left unset.
func (c Config) Control() control.Config {
	return control.Config{
		URL:              c.OBSURL,
		Password:         c.OBSPassword,
		HandshakeTimeout: c.HandshakeTimeout(),
		RequestTimeout:   c.RequestTimeout(),
	}
}

// Scheduler returns the subtitle scheduler settings. Loggers are left
// unset.
func (c Config) Scheduler() subtitle.Config {
	return subtitle.Config{
		InputName:         c.InputName,
		LineMax:           c.LineMaxChars,
		MinSecondsPerChar: c.MinSecondsPerChar,
	}
}

// isYAML reports whether path selects the YAML format.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads the configuration at path, creating it with the defaults if
// it does not exist. The returned bool is true if the file was created.
// Keys absent from the file keep their defaults.
func Load(path string) (Config, bool, error) {
	cfg := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteFile(path, cfg); err != nil {
			return Config{}, false, err
		}
		return cfg, true, nil
	}

	var err error
	if isYAML(path) {
		cfg, err = loadYAML(path, cfg)
	} else {
		cfg, err = loadProperties(path, cfg)
	}
	if err != nil {
		return Config{}, false, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, false, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, false, nil
}

func loadYAML(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func loadProperties(path string, cfg Config) (Config, error) {
	// Passwords may contain "${", so no expansion.
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := fromProperties(p, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// fromProperties overlays the keys present in p onto cfg.
func fromProperties(p *properties.Properties, cfg *Config) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := p.Get(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) {
		v, ok := p.Get(key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, &FieldError{Key: key, Reason: fmt.Sprintf("%q is not an integer", v)})
			return
		}
		*dst = n
	}
	float := func(key string, dst *float64) {
		v, ok := p.Get(key)
		if !ok {
			return
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, &FieldError{Key: key, Reason: fmt.Sprintf("%q is not a number", v)})
			return
		}
		*dst = f
	}

	str(KeyOBSURL, &cfg.OBSURL)
	// The password is taken verbatim.
	if v, ok := p.Get(KeyOBSPassword); ok {
		cfg.OBSPassword = v
	}
	str(KeyInputName, &cfg.InputName)
	integer(KeyLineMaxChars, &cfg.LineMaxChars)
	float(KeyMinSecondsPerChar, &cfg.MinSecondsPerChar)
	str(KeyListenAddr, &cfg.ListenAddr)
	integer(KeyHandshakeTimeoutMS, &cfg.HandshakeTimeoutMS)
	integer(KeyRequestTimeoutMS, &cfg.RequestTimeoutMS)

	return errors.Join(errs...)
}

// toProperties converts cfg into properties in key order.
func toProperties(cfg Config) *properties.Properties {
	p := properties.NewProperties()
	p.DisableExpansion = true
	set := func(key, value, comment string) {
		p.Set(key, value)
		p.SetComment(key, comment)
	}

	set(KeyOBSURL, cfg.OBSURL, "obs-websocket URL")
	set(KeyOBSPassword, cfg.OBSPassword, "obs-websocket password, empty if authentication is disabled")
	set(KeyInputName, cfg.InputName, "OBS text source that shows the subtitles")
	set(KeyLineMaxChars, strconv.Itoa(cfg.LineMaxChars), "characters per subtitle line")
	set(KeyMinSecondsPerChar, strconv.FormatFloat(cfg.MinSecondsPerChar, 'f', -1, 64), "seconds a subtitle stays up per visible character")
	set(KeyListenAddr, cfg.ListenAddr, "HTTP listen address of the gateway")
	set(KeyHandshakeTimeoutMS, strconv.Itoa(cfg.HandshakeTimeoutMS), "handshake timeout in milliseconds, 0 disables")
	set(KeyRequestTimeoutMS, strconv.Itoa(cfg.RequestTimeoutMS), "request timeout in milliseconds, 0 disables")
	return p
}

// Write encodes cfg as a properties file.
func Write(w io.Writer, cfg Config) error {
	if _, err := toProperties(cfg).WriteComment(w, "# ", properties.UTF8); err != nil {
		return err
	}
	return nil
}

// WriteYAML encodes cfg as YAML.
func WriteYAML(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(cfg)
}

// WriteFile writes cfg to path in the format selected by its extension.
// The file is readable only by its owner since it may hold a password.
func WriteFile(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if isYAML(path) {
		err = WriteYAML(f, cfg)
	} else {
		err = Write(f, cfg)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
