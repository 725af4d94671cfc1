package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the whole configuration. Failures are wrapped in a
// ValidationError so callers can stop before any session starts.
func (cfg *Config) Validate() error {
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.NotesDir, validation.Required),
		validation.Field(&cfg.Database),
		validation.Field(&cfg.Log),
		validation.Field(&cfg.Links),
		validation.Field(&cfg.Tree),
		validation.Field(&cfg.External),
	)
	if err != nil {
		return &ValidationError{Path: cfg.path, Err: err}
	}
	return nil
}

func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In("sqlite3", "pgx")),
		validation.Field(&c.DSN, validation.Required),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

func (c LinksConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Pattern, validation.Required, validation.By(namedCaptures("description", "url"))),
		validation.Field(&c.URLPattern, validation.Required, validation.By(namedCaptures())),
	)
}

func (c TreeConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.UnlistedDepth, validation.Min(0)),
		validation.Field(&c.PreviewWorkers, validation.Min(0)),
	)
}

func (c ExternalConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.OpenFile, validation.By(mentions("$FILE"))),
		validation.Field(&c.OpenDir, validation.By(mentions("$DIR"))),
		validation.Field(&c.OpenURL, validation.By(mentions("$URL"))),
		validation.Field(&c.OpenExternal, validation.By(mentions("$FILE", "$DIR", "$URL"))),
		validation.Field(&c.Jump, validation.By(mentions("$FILE"))),
		validation.Field(&c.PipeSnippet, validation.By(mentions())),
		validation.Field(&c.PreviewFile, validation.By(optional(mentions("$FILE")))),
		validation.Field(&c.PreviewDir, validation.By(optional(mentions("$DIR")))),
	)
}

// optional applies rule only to templates that set an executable.
func optional(rule validation.RuleFunc) validation.RuleFunc {
	return func(value interface{}) error {
		if t, ok := value.(CommandTemplate); ok && t.IsZero() {
			return nil
		}
		return rule(value)
	}
}

// namedCaptures checks that a pattern compiles and exposes the given groups.
func namedCaptures(groups ...string) validation.RuleFunc {
	return func(value interface{}) error {
		pattern, _ := value.(string)
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("does not compile: %w", err)
		}
		for _, group := range groups {
			if re.SubexpIndex(group) < 0 {
				return fmt.Errorf("missing named capture %q", group)
			}
		}
		return nil
	}
}

// mentions checks that a template has an executable and references at least
// one of the placeholders, when any are given.
func mentions(placeholders ...string) validation.RuleFunc {
	return func(value interface{}) error {
		t, _ := value.(CommandTemplate)
		if t.IsZero() {
			return errors.New("exec is required")
		}
		if len(placeholders) == 0 {
			return nil
		}
		words := append([]string{t.Exec}, t.Args...)
		for _, word := range words {
			for _, p := range placeholders {
				if strings.Contains(word, p) || strings.Contains(word, "${"+p[1:]+"}") {
					return nil
				}
			}
		}
		return fmt.Errorf("must reference %s", strings.Join(placeholders, " or "))
	}
}
