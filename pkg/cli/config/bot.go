package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/model/command"
	"github.com/secmon-lab/sleuth/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// BotFile is the optional TOML file that tunes the bot's behavior.
//
//	prefix = "!s"
//	page_size = 100
//	search_timeout = "5m"
//	help = """..."""
type BotFile struct {
	Prefix        string `toml:"prefix"`
	PageSize      int    `toml:"page_size"`
	SearchTimeout string `toml:"search_timeout"`
	Help          string `toml:"help"`
}

// BotSettings is the merged result of the bot file and flags.
type BotSettings struct {
	Prefix        string
	PageSize      int
	SearchTimeout time.Duration
	Help          string
}

// Options converts the settings to use case options. Zero values keep the
// use case defaults.
func (s *BotSettings) Options() []usecase.Option {
	var opts []usecase.Option
	if s.Prefix != "" {
		opts = append(opts, usecase.WithPrefix(s.Prefix))
	}
	if s.PageSize > 0 {
		opts = append(opts, usecase.WithPageLimit(s.PageSize))
	}
	if s.SearchTimeout > 0 {
		opts = append(opts, usecase.WithSearchTimeout(s.SearchTimeout))
	}
	if s.Help != "" {
		opts = append(opts, usecase.WithHelpText(s.Help))
	}
	return opts
}

func (s BotSettings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("prefix", s.Prefix),
		slog.Int("page_size", s.PageSize),
		slog.Duration("search_timeout", s.SearchTimeout),
		slog.Bool("custom_help", s.Help != ""),
	)
}

// Bot holds CLI flags for bot behavior
type Bot struct {
	configPath    string
	prefix        string
	pageSize      int
	searchTimeout time.Duration
}

func (x *Bot) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bot-config",
			Usage:       "Path to the bot TOML file",
			Category:    "Bot",
			Sources:     cli.EnvVars("SLEUTH_BOT_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "prefix",
			Usage:       "Token channel messages must start with to invoke the bot",
			Category:    "Bot",
			Value:       command.DefaultPrefix,
			Sources:     cli.EnvVars("SLEUTH_PREFIX"),
			Destination: &x.prefix,
		},
		&cli.IntFlag{
			Name:        "page-size",
			Usage:       "Messages requested per history page (1-100)",
			Category:    "Bot",
			Value:       100,
			Sources:     cli.EnvVars("SLEUTH_PAGE_SIZE"),
			Destination: &x.pageSize,
		},
		&cli.DurationFlag{
			Name:        "search-timeout",
			Usage:       "Upper bound of one history search",
			Category:    "Bot",
			Value:       usecase.DefaultSearchTimeout,
			Sources:     cli.EnvVars("SLEUTH_SEARCH_TIMEOUT"),
			Destination: &x.searchTimeout,
		},
	}
}

// LoadBotFile reads the bot TOML file at path.
func LoadBotFile(path string) (*BotFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "bot config file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read bot config file", goerr.V(ConfigPathKey, path))
	}

	var file BotFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse bot config file", goerr.V(ConfigPathKey, path))
	}

	return &file, nil
}

// Configure merges the bot file with the flags. Flags explicitly set on the
// command line or through the environment win over file values.
func (x *Bot) Configure(c *cli.Command) (*BotSettings, error) {
	settings := &BotSettings{
		Prefix:        x.prefix,
		PageSize:      x.pageSize,
		SearchTimeout: x.searchTimeout,
	}

	if x.configPath != "" {
		file, err := LoadBotFile(x.configPath)
		if err != nil {
			return nil, err
		}
		if err := mergeBotFile(settings, file, c.IsSet); err != nil {
			return nil, goerr.Wrap(err, "invalid bot config file", goerr.V(ConfigPathKey, x.configPath))
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func mergeBotFile(settings *BotSettings, file *BotFile, isSet func(name string) bool) error {
	if file.Prefix != "" && !isSet("prefix") {
		settings.Prefix = file.Prefix
	}
	if file.PageSize != 0 && !isSet("page-size") {
		settings.PageSize = file.PageSize
	}
	if file.SearchTimeout != "" && !isSet("search-timeout") {
		d, err := time.ParseDuration(file.SearchTimeout)
		if err != nil {
			return goerr.Wrap(errors.Join(ErrInvalidTimeout, err), "cannot parse search_timeout", goerr.V(TimeoutKey, file.SearchTimeout))
		}
		settings.SearchTimeout = d
	}
	settings.Help = file.Help
	return nil
}

// Validate checks the merged settings.
func (s *BotSettings) Validate() error {
	if s.Prefix == "" || strings.Contains(s.Prefix, " ") {
		return goerr.Wrap(ErrInvalidConfig, "prefix must be a single non-empty token", goerr.V("prefix", s.Prefix))
	}
	if s.PageSize < 1 || s.PageSize > 100 {
		return goerr.Wrap(ErrInvalidPageSize, "invalid bot settings", goerr.V(PageSizeKey, s.PageSize))
	}
	if s.SearchTimeout < 0 {
		return goerr.Wrap(ErrInvalidTimeout, "invalid bot settings", goerr.V(TimeoutKey, s.SearchTimeout))
	}
	return nil
}
