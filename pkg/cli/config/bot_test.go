package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sleuth/pkg/cli/config"
)

func writeBotFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadBotFile(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		path := writeBotFile(t, `
prefix = "?find"
page_size = 50
search_timeout = "90s"
help = """
Commands:
%[1]s exact <text>
"""
`)
		file, err := config.LoadBotFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, file.Prefix).Equal("?find")
		gt.Value(t, file.PageSize).Equal(50)
		gt.Value(t, file.SearchTimeout).Equal("90s")
		gt.String(t, file.Help).Contains("%[1]s exact <text>")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadBotFile(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("broken toml", func(t *testing.T) {
		path := writeBotFile(t, `prefix = "unterminated`)
		_, err := config.LoadBotFile(path)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestMergeBotFile(t *testing.T) {
	base := func() *config.BotSettings {
		return &config.BotSettings{
			Prefix:        "!s",
			PageSize:      100,
			SearchTimeout: 5 * time.Minute,
		}
	}
	file := &config.BotFile{
		Prefix:        "?find",
		PageSize:      20,
		SearchTimeout: "30s",
		Help:          "custom help",
	}

	t.Run("file fills unset flags", func(t *testing.T) {
		settings := base()
		err := config.MergeBotFile(settings, file, func(string) bool { return false })
		gt.NoError(t, err).Required()
		gt.Value(t, settings.Prefix).Equal("?find")
		gt.Value(t, settings.PageSize).Equal(20)
		gt.Value(t, settings.SearchTimeout).Equal(30 * time.Second)
		gt.Value(t, settings.Help).Equal("custom help")
	})

	t.Run("explicit flags win", func(t *testing.T) {
		settings := base()
		isSet := func(name string) bool { return name == "prefix" || name == "page-size" }
		err := config.MergeBotFile(settings, file, isSet)
		gt.NoError(t, err).Required()
		gt.Value(t, settings.Prefix).Equal("!s")
		gt.Value(t, settings.PageSize).Equal(100)
		gt.Value(t, settings.SearchTimeout).Equal(30 * time.Second)
	})

	t.Run("invalid timeout", func(t *testing.T) {
		settings := base()
		err := config.MergeBotFile(settings, &config.BotFile{SearchTimeout: "soon"}, func(string) bool { return false })
		gt.Error(t, err).Is(config.ErrInvalidTimeout)
	})
}

func TestBotSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings config.BotSettings
		wantErr  error
	}{
		{"valid", config.BotSettings{Prefix: "!s", PageSize: 100, SearchTimeout: time.Minute}, nil},
		{"smallest page", config.BotSettings{Prefix: "!s", PageSize: 1}, nil},
		{"zero page", config.BotSettings{Prefix: "!s", PageSize: 0}, config.ErrInvalidPageSize},
		{"page too large", config.BotSettings{Prefix: "!s", PageSize: 101}, config.ErrInvalidPageSize},
		{"negative timeout", config.BotSettings{Prefix: "!s", PageSize: 10, SearchTimeout: -time.Second}, config.ErrInvalidTimeout},
		{"empty prefix", config.BotSettings{PageSize: 10}, config.ErrInvalidConfig},
		{"prefix with space", config.BotSettings{Prefix: "hey bot", PageSize: 10}, config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr == nil {
				gt.NoError(t, err)
				return
			}
			gt.Error(t, err).Is(tt.wantErr)
		})
	}
}

func TestBotSettingsOptions(t *testing.T) {
	gt.A(t, (&config.BotSettings{}).Options()).Length(0)
	gt.A(t, (&config.BotSettings{
		Prefix:        "!s",
		PageSize:      10,
		SearchTimeout: time.Minute,
		Help:          "help",
	}).Options()).Length(4)
}
