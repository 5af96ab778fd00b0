package env

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnv points at an optional flat yaml file with lower-cased env keys.
const ConfigPathEnv = "ORBITER_CONFIG"

var (
	mu sync.RWMutex
	k  = koanf.New(".")
)

// Load reads .env files into the process environment and layers an optional
// yaml file underneath it. Process environment always wins.
func Load(dotenvFiles ...string) error {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("err loading %s, %w", f, err)
		}
	}

	path := os.Getenv(ConfigPathEnv)
	if path == "" {
		path = "config.yaml"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	fresh := koanf.New(".")
	if err := fresh.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("err loading config file %s, %w", path, err)
	}

	mu.Lock()
	k = fresh
	mu.Unlock()
	slog.Info("loaded config file", "path", path, "keys", len(fresh.Keys()))
	return nil
}

func lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	mu.RLock()
	defer mu.RUnlock()
	lower := strings.ToLower(key)
	if !k.Exists(lower) {
		return "", false
	}
	return k.String(lower), true
}

func GetEnv(key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetBool(key string, fallback bool) bool {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool in config, using default", "key", key, "value", v)
		return fallback
	}
	return b
}

func GetInt(key string, fallback int) int {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid int in config, using default", "key", key, "value", v)
		return fallback
	}
	return i
}

// GetDuration accepts Go duration strings; a bare integer is read as seconds.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in config, using default", "key", key, "value", v)
		return fallback
	}
	return d
}

// GetList splits a comma separated value, dropping empty items.
func GetList(key string, fallback []string) []string {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
