// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DiscordToken   string
	GitHubToken    string
	WebhookSecret  string
	AdminToken     string
	ListenAddr     string
	DBPath         string
	SyncAction     string
	SweepDelay     time.Duration
	RetryDelay     time.Duration
	SweepOnStartup bool
}

// HasAdminAPI reports whether the authenticated admin endpoints should be served.
func (c *Config) HasAdminAPI() bool {
	return c.AdminToken != ""
}

// LoadEnvFile seeds the environment from a dotenv file. Variables already
// set in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// PTALBOT_DISCORD_TOKEN and PTALBOT_WEBHOOK_SECRET are required.
// Optional variables with defaults: PTALBOT_LISTEN_ADDR (127.0.0.1:8080),
// PTALBOT_DB_PATH (ptalbot.db), PTALBOT_SWEEP_DELAY (1500ms),
// PTALBOT_RETRY_DELAY (1s), PTALBOT_SWEEP_ON_STARTUP (true),
// PTALBOT_SYNC_ACTION (crowdin-ptal). PTALBOT_GITHUB_TOKEN and
// PTALBOT_ADMIN_TOKEN may be empty.
func Load() (*Config, error) {
	discordToken := os.Getenv("PTALBOT_DISCORD_TOKEN")
	if discordToken == "" {
		return nil, errors.New("PTALBOT_DISCORD_TOKEN is required")
	}

	webhookSecret := os.Getenv("PTALBOT_WEBHOOK_SECRET")
	if webhookSecret == "" {
		return nil, errors.New("PTALBOT_WEBHOOK_SECRET is required")
	}

	sweepDelay, err := durationEnv("PTALBOT_SWEEP_DELAY", 1500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	retryDelay, err := durationEnv("PTALBOT_RETRY_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	if retryDelay <= 0 {
		return nil, fmt.Errorf("PTALBOT_RETRY_DELAY must be positive, got %s", retryDelay)
	}

	sweepOnStartup := true
	if v, ok := os.LookupEnv("PTALBOT_SWEEP_ON_STARTUP"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PTALBOT_SWEEP_ON_STARTUP has invalid boolean %q: %w", v, err)
		}
		sweepOnStartup = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("PTALBOT_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "ptalbot.db"
	if v, ok := os.LookupEnv("PTALBOT_DB_PATH"); ok {
		dbPath = v
	}

	syncAction := "crowdin-ptal"
	if v, ok := os.LookupEnv("PTALBOT_SYNC_ACTION"); ok && v != "" {
		syncAction = v
	}

	return &Config{
		DiscordToken:   discordToken,
		GitHubToken:    os.Getenv("PTALBOT_GITHUB_TOKEN"),
		WebhookSecret:  webhookSecret,
		AdminToken:     os.Getenv("PTALBOT_ADMIN_TOKEN"),
		ListenAddr:     listenAddr,
		DBPath:         dbPath,
		SyncAction:     syncAction,
		SweepDelay:     sweepDelay,
		RetryDelay:     retryDelay,
		SweepOnStartup: sweepOnStartup,
	}, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}
