package util

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"github.com/titanous/json5"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const Name = "nostui"
const ConfigFileName = "config.yaml"

// ConfigFileNames is the search order for a config file, in the working
// directory first and then in the config dir.
var ConfigFileNames = []string{
	"config.json5",
	"config.json",
	"config.yaml",
	"config.yml",
	"config.toml",
	"config.ini",
}

//go:embed config_default.yaml
var embeddedConfig []byte

var ErrNoKey = errors.New("no private key configured")

// ConfigError names the config entry that could not be used.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Duration is a time.Duration written as "5m" or "1s" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type ReconnectConf struct {
	Initial Duration `yaml:"initial" json:"initial" toml:"initial"`
	Max     Duration `yaml:"max" json:"max" toml:"max"`
}

type AppConfig struct {
	Key string `yaml:"key" json:"key" toml:"key"`
	// Deprecated: use Key.
	PrivateKey     string            `yaml:"privatekey" json:"privatekey" toml:"privatekey"`
	Relays         []string          `yaml:"relays" json:"relays" toml:"relays"`
	Follows        []string          `yaml:"follows" json:"follows" toml:"follows"`
	Lookback       Duration          `yaml:"lookback" json:"lookback" toml:"lookback"`
	Limit          int               `yaml:"limit" json:"limit" toml:"limit"`
	PendingLimit   int               `yaml:"pending_limit" json:"pending_limit" toml:"pending_limit"`
	Reconnect      ReconnectConf     `yaml:"reconnect" json:"reconnect" toml:"reconnect"`
	PublishTimeout Duration          `yaml:"publish_timeout" json:"publish_timeout" toml:"publish_timeout"`
	ShutdownGrace  Duration          `yaml:"shutdown_grace" json:"shutdown_grace" toml:"shutdown_grace"`
	Keybindings    map[string]string `yaml:"keybindings" json:"keybindings" toml:"keybindings"`
	Styles         map[string]string `yaml:"styles" json:"styles" toml:"styles"`

	// Path is the file the config was read from, empty for the embedded
	// defaults.
	Path string `yaml:"-" json:"-" toml:"-"`
}

// ReadConf loads the config at path, or searches for one when path is
// empty. The file is merged over the embedded defaults, environment
// overrides are applied and the result is validated.
func ReadConf(path string) (*AppConfig, error) {
	c, err := DefaultConf()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = findConfig()
	}

	if path == "" {
		slog.Info("config file not found, using embedded defaults")
		writeDefaultConf()
	} else {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		user, err := ParseConf(filepath.Ext(path), buf)
		if err != nil {
			return nil, fmt.Errorf("in config file %s: %w", path, err)
		}
		c.merge(user)
		c.Path = path
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConf returns the embedded default config.
func DefaultConf() (*AppConfig, error) {
	c := &AppConfig{}
	if err := yaml.Unmarshal(embeddedConfig, c); err != nil {
		return nil, fmt.Errorf("embedded config: %w", err)
	}
	return c, nil
}

// ParseConf decodes a config file by its extension.
func ParseConf(ext string, buf []byte) (*AppConfig, error) {
	c := &AppConfig{}
	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(buf, c)
	case "json":
		err = json.Unmarshal(jsonc.ToJSON(buf), c)
	case "json5":
		err = json5.Unmarshal(buf, c)
	case "toml":
		err = toml.Unmarshal(buf, c)
	case "ini":
		err = parseINI(buf, c)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func parseINI(buf []byte, c *AppConfig) error {
	f, err := ini.Load(buf)
	if err != nil {
		return err
	}

	root := f.Section("")
	c.Key = root.Key("key").String()
	c.PrivateKey = root.Key("privatekey").String()
	c.Relays = splitList(root.Key("relays").String())
	c.Follows = splitList(root.Key("follows").String())

	for name, dst := range map[string]*int{
		"limit":         &c.Limit,
		"pending_limit": &c.PendingLimit,
	} {
		if !root.HasKey(name) {
			continue
		}
		v, err := root.Key(name).Int()
		if err != nil {
			return &ConfigError{Field: name, Value: root.Key(name).String(), Err: err}
		}
		*dst = v
	}

	durations := map[string]*Duration{
		"lookback":        &c.Lookback,
		"publish_timeout": &c.PublishTimeout,
		"shutdown_grace":  &c.ShutdownGrace,
	}
	if err := iniDurations(root, "", durations); err != nil {
		return err
	}

	if f.HasSection("reconnect") {
		rc := f.Section("reconnect")
		err := iniDurations(rc, "reconnect.", map[string]*Duration{
			"initial": &c.Reconnect.Initial,
			"max":     &c.Reconnect.Max,
		})
		if err != nil {
			return err
		}
	}
	if f.HasSection("keybindings") {
		c.Keybindings = f.Section("keybindings").KeysHash()
	}
	if f.HasSection("styles") {
		c.Styles = f.Section("styles").KeysHash()
	}
	return nil
}

func iniDurations(s *ini.Section, prefix string, fields map[string]*Duration) error {
	for name, dst := range fields {
		if !s.HasKey(name) {
			continue
		}
		raw := s.Key(name).String()
		if err := dst.UnmarshalText([]byte(raw)); err != nil {
			return &ConfigError{Field: prefix + name, Value: raw, Err: err}
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// merge lays the fields set in o over c. Maps are merged key by key.
func (c *AppConfig) merge(o *AppConfig) {
	if o.Key != "" {
		c.Key = o.Key
	}
	if o.PrivateKey != "" {
		c.PrivateKey = o.PrivateKey
	}
	if o.Relays != nil {
		c.Relays = o.Relays
	}
	if o.Follows != nil {
		c.Follows = o.Follows
	}
	if o.Lookback != 0 {
		c.Lookback = o.Lookback
	}
	if o.Limit != 0 {
		c.Limit = o.Limit
	}
	if o.PendingLimit != 0 {
		c.PendingLimit = o.PendingLimit
	}
	if o.Reconnect.Initial != 0 {
		c.Reconnect.Initial = o.Reconnect.Initial
	}
	if o.Reconnect.Max != 0 {
		c.Reconnect.Max = o.Reconnect.Max
	}
	if o.PublishTimeout != 0 {
		c.PublishTimeout = o.PublishTimeout
	}
	if o.ShutdownGrace != 0 {
		c.ShutdownGrace = o.ShutdownGrace
	}
	c.Keybindings = mergeMap(c.Keybindings, o.Keybindings)
	c.Styles = mergeMap(c.Styles, o.Styles)
}

func mergeMap(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("NOSTUI_KEY"); v != "" {
		c.Key = v
	}
	if v := os.Getenv("NOSTUI_RELAYS"); v != "" {
		c.Relays = splitList(v)
	}
}

// SecretKey returns the configured private key, honoring the deprecated
// privatekey field.
func (c *AppConfig) SecretKey() string {
	if c.Key != "" {
		return strings.TrimSpace(c.Key)
	}
	return strings.TrimSpace(c.PrivateKey)
}

// Validate checks the fields that do not need another package to parse.
// Keys, keybindings and styles are checked where they are parsed.
func (c *AppConfig) Validate() error {
	if c.SecretKey() == "" {
		return &ConfigError{Field: "key", Err: ErrNoKey}
	}
	if len(c.Relays) == 0 {
		return &ConfigError{Field: "relays", Err: errors.New("at least one relay is required")}
	}
	for _, r := range c.Relays {
		if err := validRelayURL(r); err != nil {
			return &ConfigError{Field: "relays", Value: r, Err: err}
		}
	}
	for _, f := range []struct {
		name string
		d    Duration
	}{
		{"lookback", c.Lookback},
		{"reconnect.initial", c.Reconnect.Initial},
		{"reconnect.max", c.Reconnect.Max},
		{"publish_timeout", c.PublishTimeout},
		{"shutdown_grace", c.ShutdownGrace},
	} {
		if f.d <= 0 {
			return &ConfigError{Field: f.name, Value: f.d.Std().String(), Err: errors.New("must be positive")}
		}
	}
	if c.Reconnect.Max < c.Reconnect.Initial {
		return &ConfigError{Field: "reconnect.max", Value: c.Reconnect.Max.Std().String(),
			Err: errors.New("must not be below reconnect.initial")}
	}
	if c.Limit <= 0 {
		return &ConfigError{Field: "limit", Value: fmt.Sprint(c.Limit), Err: errors.New("must be positive")}
	}
	if c.PendingLimit <= 0 {
		return &ConfigError{Field: "pending_limit", Value: fmt.Sprint(c.PendingLimit), Err: errors.New("must be positive")}
	}
	return nil
}

func validRelayURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("scheme must be ws or wss")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func findConfig() string {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range ConfigFileNames {
		p := filepath.Join(configDir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func writeDefaultConf() {
	configDir, err := GetConfigDir()
	if err != nil {
		return
	}
	userConfigPath := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(userConfigPath, embeddedConfig, 0600); err != nil {
		slog.Warn("could not write default config", "path", userConfigPath, "error", err)
		return
	}
	slog.Info("created default config file", "path", userConfigPath)
}
