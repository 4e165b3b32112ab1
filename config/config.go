// Package config loads process environment, optionally from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv reads .env when present. Variables already set in the
// environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("load .env", zap.Error(err))
	}
}

// Get returns the trimmed value of k, or def when unset or blank.
func Get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Minutes reads k as a whole number of minutes.
func Minutes(k string, def time.Duration) time.Duration {
	return scaled(k, time.Minute, def)
}

// Hours reads k as a whole number of hours.
func Hours(k string, def time.Duration) time.Duration {
	return scaled(k, time.Hour, def)
}

func scaled(k string, unit, def time.Duration) time.Duration {
	n, err := strconv.Atoi(Get(k, ""))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * unit
}

// List splits a comma-separated variable, dropping blanks.
func List(k string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(k), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
