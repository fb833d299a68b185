package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/uoscommunity/scorebot/internal/vesting"
)

const defaultHelpLink = "[Please add your telegram account link to your profile on U°Community platform.](https://u.community/)"

// Config holds all application configuration. Values come from defaults,
// then the optional YAML file at CONFIG_PATH, then environment variables.
type Config struct {
	TelegramBotToken    string        `yaml:"telegram_bot_token"`
	TelegramAPIURL      string        `yaml:"telegram_api_url"`
	TelegramPollTimeout time.Duration `yaml:"telegram_poll_timeout"`
	BotWorkers          int           `yaml:"bot_workers"`

	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	UOSAPIURL         string        `yaml:"uos_api_url"`
	UOSAPIURI         string        `yaml:"uos_api_uri"`
	UOSRetryMax       int           `yaml:"uos_retry_max"`
	UOSRetryBaseDelay time.Duration `yaml:"uos_retry_base_delay"`

	RateMultiplier  string `yaml:"rate_multiplier"`
	UcomUserURL     string `yaml:"ucom_user_url"`
	UcomUserURI     string `yaml:"ucom_user_uri"`
	AccountHelpLink string `yaml:"account_help_link"`

	TimeLockContract  string `yaml:"uos_timelock_contract_name"`
	ActLockContract   string `yaml:"uos_actlock_contract_name"`
	EmissionContract  string `yaml:"uos_emission_contract_name"`
	EmissionTable     string `yaml:"uos_emission_table"`
	TimeLockStart     string `yaml:"uos_timelock_start"`
	TimeLockEnd       string `yaml:"uos_timelock_end"`
	ActLockMultiplier string `yaml:"uos_actlock_multiplier"`

	HTTPPort    string `yaml:"http_port"`
	AdminAPIKey string `yaml:"admin_api_key"`

	ExportCron            string `yaml:"export_cron"`
	ExportXLSXPath        string `yaml:"export_xlsx_path"`
	GoogleSheetsID        string `yaml:"google_sheets_id"`
	GoogleCredentialsJSON string `yaml:"google_credentials_json"`
}

func defaults() Config {
	return Config{
		TelegramAPIURL:      "https://api.telegram.org",
		TelegramPollTimeout: 30 * time.Second,
		BotWorkers:          4,
		UOSAPIURL:           "https://api.uos.network",
		UOSAPIURI:           "/v1/score/account",
		UOSRetryMax:         3,
		UOSRetryBaseDelay:   1 * time.Second,
		RateMultiplier:      "1",
		UcomUserURL:         "https://u.community",
		UcomUserURI:         "/user/",
		AccountHelpLink:     defaultHelpLink,
		TimeLockContract:    "uos.timelock",
		ActLockContract:     "uos.actlock",
		EmissionContract:    "uos.calcs",
		EmissionTable:       "emission",
		ActLockMultiplier:   "1",
		HTTPPort:            "8080",
	}
}

// Load reads the YAML file named by CONFIG_PATH, if any, and applies environment overrides.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.TelegramBotToken = envOrDefault("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	cfg.TelegramAPIURL = strings.TrimRight(envOrDefault("TELEGRAM_API_URL", cfg.TelegramAPIURL), "/")
	cfg.TelegramPollTimeout = envOrDefaultDuration("TELEGRAM_POLL_TIMEOUT", cfg.TelegramPollTimeout)
	cfg.BotWorkers = envOrDefaultInt("BOT_WORKERS", cfg.BotWorkers)

	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.SQLitePath = envOrDefault("SQLITE_PATH", cfg.SQLitePath)

	cfg.UOSAPIURL = strings.TrimRight(envOrDefault("UOS_API_URL", cfg.UOSAPIURL), "/")
	cfg.UOSAPIURI = envOrDefault("UOS_API_URI", cfg.UOSAPIURI)
	cfg.UOSRetryMax = envOrDefaultInt("UOS_RETRY_MAX", cfg.UOSRetryMax)
	cfg.UOSRetryBaseDelay = envOrDefaultDuration("UOS_RETRY_BASE_DELAY", cfg.UOSRetryBaseDelay)

	cfg.RateMultiplier = envOrDefault("RATE_MULTIPLIER", cfg.RateMultiplier)
	cfg.UcomUserURL = envOrDefault("UCOM_USER_URL", cfg.UcomUserURL)
	cfg.UcomUserURI = envOrDefault("UCOM_USER_URI", cfg.UcomUserURI)
	cfg.AccountHelpLink = envOrDefault("ACCOUNT_HELP_LINK", cfg.AccountHelpLink)

	cfg.TimeLockContract = envOrDefault("UOS_TIMELOCK_CONTRACT_NAME", cfg.TimeLockContract)
	cfg.ActLockContract = envOrDefault("UOS_ACTLOCK_CONTRACT_NAME", cfg.ActLockContract)
	cfg.EmissionContract = envOrDefault("UOS_EMISSION_CONTRACT_NAME", cfg.EmissionContract)
	cfg.EmissionTable = envOrDefault("UOS_EMISSION_TABLE", cfg.EmissionTable)
	cfg.TimeLockStart = envOrDefault("UOS_TIMELOCK_START", cfg.TimeLockStart)
	cfg.TimeLockEnd = envOrDefault("UOS_TIMELOCK_END", cfg.TimeLockEnd)
	cfg.ActLockMultiplier = envOrDefault("UOS_ACTLOCK_MULTIPLIER", cfg.ActLockMultiplier)

	cfg.HTTPPort = envOrDefault("HTTP_PORT", cfg.HTTPPort)
	cfg.AdminAPIKey = envOrDefault("ADMIN_API_KEY", cfg.AdminAPIKey)

	cfg.ExportCron = envOrDefault("EXPORT_CRON", cfg.ExportCron)
	cfg.ExportXLSXPath = envOrDefault("EXPORT_XLSX_PATH", cfg.ExportXLSXPath)
	cfg.GoogleSheetsID = envOrDefault("GOOGLE_SHEETS_ID", cfg.GoogleSheetsID)
	cfg.GoogleCredentialsJSON = envOrDefault("GOOGLE_CREDENTIALS_JSON", cfg.GoogleCredentialsJSON)

	if cfg.TelegramBotToken == "" {
		slog.Warn("required setting not set", "key", "TELEGRAM_BOT_TOKEN")
	}
	return cfg, nil
}

// VestingWindow parses the unlock window and activity-lock multiplier.
func (c Config) VestingWindow() (vesting.Window, error) {
	start, err := parseTime(c.TimeLockStart)
	if err != nil {
		return vesting.Window{}, fmt.Errorf("%w: UOS_TIMELOCK_START: %v", vesting.ErrInvalidConfiguration, err)
	}
	end, err := parseTime(c.TimeLockEnd)
	if err != nil {
		return vesting.Window{}, fmt.Errorf("%w: UOS_TIMELOCK_END: %v", vesting.ErrInvalidConfiguration, err)
	}
	multiplier, err := decimal.NewFromString(c.ActLockMultiplier)
	if err != nil {
		return vesting.Window{}, fmt.Errorf("%w: UOS_ACTLOCK_MULTIPLIER %q", vesting.ErrInvalidConfiguration, c.ActLockMultiplier)
	}
	return vesting.NewWindow(start, end, multiplier)
}

// ScoreMultiplier parses RATE_MULTIPLIER.
func (c Config) ScoreMultiplier() (decimal.Decimal, error) {
	m, err := decimal.NewFromString(c.RateMultiplier)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid RATE_MULTIPLIER %q: %w", c.RateMultiplier, err)
	}
	return m, nil
}

// ExportEnabled reports whether any export target is configured.
func (c Config) ExportEnabled() bool {
	return c.ExportXLSXPath != "" || (c.GoogleSheetsID != "" && c.GoogleCredentialsJSON != "")
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("not set")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", s)
	}
	return t, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
