package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/mds/internal/constants"
)

type CommandTemplate struct {
	Exec    string   `yaml:"exec"    json:"exec"`
	Args    []string `yaml:"args"    json:"args"`
	Wait    *bool    `yaml:"wait"    json:"wait"`
	Silence *bool    `yaml:"silence" json:"silence"`
}

// IsZero reports whether the template has no executable.
func (t CommandTemplate) IsZero() bool {
	return strings.TrimSpace(t.Exec) == ""
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn"    json:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file"  json:"file"`
}

type LinksConfig struct {
	Pattern    string `yaml:"pattern"     json:"pattern"`
	URLPattern string `yaml:"url_pattern" json:"url_pattern"`
}

type TreeConfig struct {
	UnlistedDepth  int `yaml:"unlisted_depth"  json:"unlisted_depth"`
	PreviewWorkers int `yaml:"preview_workers" json:"preview_workers"`
}

type ExternalConfig struct {
	OpenFile     CommandTemplate `yaml:"open_file"     json:"open_file"`
	OpenDir      CommandTemplate `yaml:"open_dir"      json:"open_dir"`
	OpenURL      CommandTemplate `yaml:"open_url"      json:"open_url"`
	OpenExternal CommandTemplate `yaml:"open_external" json:"open_external"`
	Jump         CommandTemplate `yaml:"jump"          json:"jump"`
	PreviewFile  CommandTemplate `yaml:"preview_file"  json:"preview_file"`
	PreviewDir   CommandTemplate `yaml:"preview_dir"   json:"preview_dir"`
	PipeSnippet  CommandTemplate `yaml:"pipe_snippet"  json:"pipe_snippet"`
}

// KeymapConfig maps action names to chords, one table per mode.
type KeymapConfig struct {
	Explore   map[string]string `yaml:"explore"   json:"explore"`
	Surf      map[string]string `yaml:"surf"      json:"surf"`
	Checkmark map[string]string `yaml:"checkmark" json:"checkmark"`
	Stack     map[string]string `yaml:"stack"     json:"stack"`
}

type SnapshotConfig struct {
	Region    string `yaml:"region"     json:"region"`
	Bucket    string `yaml:"bucket"     json:"bucket"`
	Endpoint  string `yaml:"endpoint"   json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
}

type Config struct {
	NotesDir string         `yaml:"notes_dir" json:"notes_dir"`
	Database DatabaseConfig `yaml:"database"  json:"database"`
	Log      LogConfig      `yaml:"log"       json:"log"`
	Links    LinksConfig    `yaml:"links"     json:"links"`
	Tree     TreeConfig     `yaml:"tree"      json:"tree"`
	External ExternalConfig `yaml:"external"  json:"external"`
	Keymap   KeymapConfig   `yaml:"keymap"    json:"keymap"`
	Snapshot SnapshotConfig `yaml:"snapshot"  json:"snapshot"`

	path string `yaml:"-"`
}

const (
	DefaultLinkPattern   = `\[(?P<description>[^\]]*)\]\((?P<url>[^)\s]+)\)`
	DefaultURLPattern    = `^[a-zA-Z][a-zA-Z0-9+.-]*://`
	DefaultUnlistedDepth = 2
)

func boolPtr(b bool) *bool {
	return &b
}

// Default returns the configuration used when the file leaves a key unset.
// dir is the directory holding the config file.
func Default(dir string) *Config {
	return &Config{
		NotesDir: filepath.Join(filepath.Dir(filepath.Clean(dir)), "notes"),
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    filepath.Join(dir, constants.DatabaseFile),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, constants.LogFile),
		},
		Links: LinksConfig{
			Pattern:    DefaultLinkPattern,
			URLPattern: DefaultURLPattern,
		},
		Tree: TreeConfig{
			UnlistedDepth:  DefaultUnlistedDepth,
			PreviewWorkers: 8,
		},
		External: ExternalConfig{
			OpenFile:     CommandTemplate{Exec: "nvim", Args: []string{"$FILE"}},
			OpenDir:      CommandTemplate{Exec: "nvim", Args: []string{"$DIR"}},
			OpenURL:      CommandTemplate{Exec: "xdg-open", Args: []string{"$URL"}, Wait: boolPtr(false), Silence: boolPtr(true)},
			OpenExternal: CommandTemplate{Exec: "xdg-open", Args: []string{"$FILE"}, Wait: boolPtr(false), Silence: boolPtr(true)},
			Jump:         CommandTemplate{Exec: "nvim", Args: []string{"+$LINE", "$FILE"}},
			PreviewFile:  CommandTemplate{Exec: "head", Args: []string{"-n", "80", "$FILE"}},
			PreviewDir:   CommandTemplate{Exec: "ls", Args: []string{"-la", "$DIR"}},
			PipeSnippet:  CommandTemplate{Exec: "less"},
		},
		Keymap:   DefaultKeymap(),
		Snapshot: SnapshotConfig{Region: "us-east-1"},
		path:     filepath.Join(dir, constants.ConfigFile+"."+constants.ConfigFileType),
	}
}

// DefaultKeymap is the built in binding of every action in every mode.
func DefaultKeymap() KeymapConfig {
	return KeymapConfig{
		Explore: map[string]string{
			"open":              "ctrl-o",
			"open_external":     "alt-o",
			"link":              "ctrl-l",
			"unlink":            "alt-l",
			"rename":            "alt-r",
			"remove":            "alt-d",
			"create_linked":     "ctrl-n",
			"surf":              "ctrl-s",
			"checkmark":         "ctrl-k",
			"toggle_preview":    "ctrl-t",
			"invert_links":      "alt-i",
			"splice":            "ctrl-e",
			"narrow":            "alt-n",
			"increase_unlisted": "alt-u",
			"decrease_unlisted": "alt-y",
			"push_to_stack":     "alt-p",
			"switch_to_stack":   "alt-s",
			"back":              "ctrl-b",
			"forward":           "ctrl-f",
			"widen":             "alt-w",
		},
		Surf: map[string]string{
			"open":          "ctrl-o",
			"open_external": "alt-o",
			"jump":          "alt-j",
			"return":        "ctrl-b",
		},
		Checkmark: map[string]string{
			"toggle": "ctrl-t",
			"open":   "ctrl-o",
			"yank":   "ctrl-y",
			"widen":  "alt-w",
			"narrow": "alt-n",
			"return": "ctrl-b",
		},
		Stack: map[string]string{
			"select":         "alt-s",
			"toggle_preview": "ctrl-t",
			"pop":            "alt-d",
			"move_to_top":    "alt-t",
			"swap_above":     "alt-k",
			"swap_below":     "alt-j",
			"return":         "ctrl-b",
		},
	}
}

// Load reads the config under home, creating it with defaults when missing.
func Load(home string) (*Config, error) {
	if err := EnsureConfigExists(home); err != nil {
		return nil, err
	}
	return FromFile(GetConfigPath(home))
}

// FromFile reads a YAML config, expanding environment variables and
// filling unset keys from Default.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default(filepath.Dir(path))
	// A mode listed in the file replaces its defaults instead of merging.
	cfg.Keymap = KeymapConfig{}
	expanded := os.Expand(string(data), expandEnv)
	if strings.TrimSpace(expanded) != "" {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.path = path
	cfg.fillKeymap()

	return cfg, nil
}

// placeholders are left for command templates to substitute at run time.
var placeholders = map[string]bool{"FILE": true, "DIR": true, "URL": true, "LINE": true}

func expandEnv(name string) string {
	if placeholders[name] {
		return "$" + name
	}
	return os.Getenv(name)
}

// fillKeymap restores default bindings for modes the file left empty.
func (cfg *Config) fillKeymap() {
	defaults := DefaultKeymap()
	if len(cfg.Keymap.Explore) == 0 {
		cfg.Keymap.Explore = defaults.Explore
	}
	if len(cfg.Keymap.Surf) == 0 {
		cfg.Keymap.Surf = defaults.Surf
	}
	if len(cfg.Keymap.Checkmark) == 0 {
		cfg.Keymap.Checkmark = defaults.Checkmark
	}
	if len(cfg.Keymap.Stack) == 0 {
		cfg.Keymap.Stack = defaults.Stack
	}
}

// ApplyOverrides lets flags bound on v and MDS_* environment variables take
// precedence over file values.
func (cfg *Config) ApplyOverrides(v *viper.Viper) {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("notes_dir", cfg.NotesDir)
	v.SetDefault("database.driver", cfg.Database.Driver)
	v.SetDefault("database.dsn", cfg.Database.DSN)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("tree.unlisted_depth", cfg.Tree.UnlistedDepth)

	cfg.NotesDir = v.GetString("notes_dir")
	cfg.Database.Driver = v.GetString("database.driver")
	cfg.Database.DSN = v.GetString("database.dsn")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.File = v.GetString("log.file")
	cfg.Tree.UnlistedDepth = v.GetInt("tree.unlisted_depth")
}

func (cfg *Config) GetConfigPath() string {
	return cfg.path
}

func (cfg *Config) Save() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(cfg.path, data, 0o644)
}
