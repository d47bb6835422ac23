package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrMissingBotToken  = goerr.New("slack bot token is required")
	ErrInvalidBackend   = goerr.New("invalid repository backend")
	ErrMissingProjectID = goerr.New("firestore project ID is required")
	ErrInvalidLogLevel  = goerr.New("invalid log level")
	ErrInvalidLogFormat = goerr.New("invalid log format")
	ErrInvalidPageSize  = goerr.New("page size must be between 1 and 100")
	ErrInvalidTimeout   = goerr.New("invalid search timeout")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	LogLevelKey   = "log_level"
	LogFormatKey  = "log_format"
	PageSizeKey   = "page_size"
	TimeoutKey    = "search_timeout"
)
