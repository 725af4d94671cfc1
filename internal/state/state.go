package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/viper"

	"github.com/Paintersrp/mds/internal/config"
	"github.com/Paintersrp/mds/internal/external"
	"github.com/Paintersrp/mds/internal/fzf"
	"github.com/Paintersrp/mds/internal/handler"
	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/parser"
	"github.com/Paintersrp/mds/internal/preview"
	"github.com/Paintersrp/mds/internal/prompt"
	"github.com/Paintersrp/mds/internal/render"
	"github.com/Paintersrp/mds/internal/session"
	"github.com/Paintersrp/mds/internal/snapshot"
	"github.com/Paintersrp/mds/internal/store"
	"github.com/Paintersrp/mds/internal/templater"
	"github.com/Paintersrp/mds/internal/tui/picker"
	"github.com/Paintersrp/mds/internal/vault"
)

type State struct {
	Config    *config.Config
	Home      string
	Logger    *slog.Logger
	Store     *store.Store
	Resources *render.Resources
	Links     parser.LinkOptions
	Keys      nav.Keys
	Handler   *handler.FileHandler
	Runner    *external.Runner
	Finder    nav.Finder
	Picker    *fzf.FuzzyFinder
	Prompt    *prompt.Terminal
	Syncer    *vault.Syncer
	Templates *templater.Templater
	Status    io.Writer

	logFile io.Closer
}

type Options struct {
	// Home defaults to the user home directory.
	Home string
	// ConfigPath replaces the config under Home.
	ConfigPath string
	// Viper carries flag and environment overrides.
	Viper *viper.Viper
}

func NewState(ctx context.Context, opts Options) (*State, error) {
	home := opts.Home
	if home == "" {
		var err error
		if home, err = GetHomeDir(); err != nil {
			return nil, err
		}
	}

	cfg, err := LoadConfig(home, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Viper != nil {
		cfg.ApplyOverrides(opts.Viper)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &State{Config: cfg, Home: home, Status: os.Stderr}

	s.Logger, s.logFile, err = NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.NotesDir, 0o755); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create notes directory: %w", err)
	}

	if s.Links, err = parser.NewLinkOptions(cfg.Links, cfg.External); err != nil {
		s.Close()
		return nil, err
	}
	if s.Keys, err = nav.BuildKeys(cfg.Keymap); err != nil {
		s.Close()
		return nil, err
	}

	s.Resources, err = render.New(render.Options{Width: PreviewWidth(), Plain: !IsTerminal()})
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Store, err = store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, s.Logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Handler = handler.NewFileHandler(cfg.NotesDir)
	s.Runner = external.New(cfg.External, s.Logger)
	s.Finder = picker.New()
	s.Picker = fzf.NewFuzzyFinder(s.Resources)
	s.Prompt = prompt.New()
	s.Syncer = vault.NewSyncer(s.Store, s.Handler, s.Logger)

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.GetConfigPath(home)
	}
	if s.Templates, err = templater.NewTemplater(filepath.Join(filepath.Dir(cfgPath), "templates")); err != nil {
		s.Close()
		return nil, err
	}

	s.Logger.Debug("state ready",
		slog.String("notes_dir", cfg.NotesDir),
		slog.String("driver", cfg.Database.Driver),
	)
	return s, nil
}

// Env assembles the collaborators of a navigation session.
func (s *State) Env() *session.Env {
	workers := s.Config.Tree.PreviewWorkers
	return &session.Env{
		Graph:     s.Store,
		Iteration: &nav.Iteration{Finder: s.Finder, Keys: s.Keys, Workers: workers},
		Picker:    s.Picker,
		Prompt:    s.Prompt,
		Open:      s.Runner,
		Previews: &preview.Renderer{
			Graph:         s.Store,
			Resources:     s.Resources,
			Links:         s.Links,
			UnlistedDepth: s.Config.Tree.UnlistedDepth,
		},
		Resources: s.Resources,
		Links:     s.Links,
		NotesDir:  s.Config.NotesDir,
		Trash:     s.Handler.Trash,
		Copy:      clipboard.WriteAll,
		Status:    s.Status,
		Logger:    s.Logger,
		Delay:     session.StatusDelay,
	}
}

func (s *State) Exporter() *snapshot.Exporter {
	return snapshot.NewExporter(s.Store, s.Config.Snapshot, s.Logger)
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return home, nil
}

// LoadConfig reads path when set, otherwise the config under home, which is
// created with defaults on first run.
func LoadConfig(home, path string) (*config.Config, error) {
	if path != "" {
		return config.FromFile(path)
	}
	return config.Load(home)
}

// Close releases the store and the log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Store = nil
	}
	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logFile = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
