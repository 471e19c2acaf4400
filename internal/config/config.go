package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/env"
)

type Config struct {
	CacheDir           string
	DBPath             string
	LogPath            string
	MenuPath           string
	BaseURL            string
	UserAgent          string
	RequestTimeout     time.Duration
	MinRequestInterval time.Duration
	FetchInterval      time.Duration
	StatusInterval     time.Duration
	ThreadListTTL      time.Duration
	MaxComments        int
	FetchLimit         int
	TitleMaxLen        int
	Placeholder        string
	Debug              bool
}

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "livethread")
	return defaultsIn(cacheDir)
}

func defaultsIn(cacheDir string) Config {
	return Config{
		CacheDir:           cacheDir,
		DBPath:             filepath.Join(cacheDir, "cache.db"),
		LogPath:            filepath.Join(cacheDir, "debug.log"),
		MenuPath:           filepath.Join(cacheDir, "menu.json"),
		BaseURL:            "https://www.reddit.com",
		UserAgent:          "livethread/1.0",
		RequestTimeout:     15 * time.Second,
		MinRequestInterval: 1 * time.Second,
		FetchInterval:      2 * time.Second,
		StatusInterval:     2 * time.Second,
		ThreadListTTL:      5 * time.Minute,
		MaxComments:        1000,
		FetchLimit:         100,
		TitleMaxLen:        40,
		Placeholder:        "?",
	}
}

// Load returns the defaults overridden by a .env file in the working
// directory, when present, and then by the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if dir := env.GetString("LIVETHREAD_CACHE_DIR", ""); dir != "" {
		cfg = defaultsIn(dir)
	}

	cfg.MenuPath = env.GetString("LIVETHREAD_MENU", cfg.MenuPath)
	cfg.BaseURL = env.GetString("LIVETHREAD_BASE_URL", cfg.BaseURL)
	cfg.UserAgent = env.GetString("LIVETHREAD_USER_AGENT", env.GetString("REDDIT_USER_AGENT", cfg.UserAgent))
	cfg.Debug = env.GetBool("LIVETHREAD_DEBUG", cfg.Debug)

	var err error
	if cfg.FetchInterval, err = durationVar("LIVETHREAD_FETCH_INTERVAL", cfg.FetchInterval); err != nil {
		return Config{}, err
	}
	if cfg.MinRequestInterval, err = durationVar("LIVETHREAD_MIN_REQUEST_INTERVAL", cfg.MinRequestInterval); err != nil {
		return Config{}, err
	}
	if cfg.MaxComments, err = intVar("LIVETHREAD_MAX_COMMENTS", cfg.MaxComments); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the program cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("config: base URL %q is not an absolute URL", c.BaseURL)
	}
	if c.UserAgent == "" {
		return errors.New("config: user agent is empty")
	}
	if c.MinRequestInterval < 0 {
		return fmt.Errorf("config: min request interval %s is negative", c.MinRequestInterval)
	}
	if c.FetchInterval <= 0 {
		return fmt.Errorf("config: fetch interval %s must be positive", c.FetchInterval)
	}
	if c.MaxComments <= 0 {
		return fmt.Errorf("config: max comments %d must be positive", c.MaxComments)
	}
	return nil
}

func durationVar(name string, def time.Duration) (time.Duration, error) {
	raw := env.GetString(name, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", name, err)
	}
	return d, nil
}

func intVar(name string, def int) (int, error) {
	raw := env.GetString(name, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", name, err)
	}
	return n, nil
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
