package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env style files from the working directory. Variables
// already present in the process environment are never overridden.
func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Failed to load env file", "path", f, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", f)
	}
}

// expandEnv is os.ExpandEnv that leaves the $lang placeholder and single
// character references alone.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		if key == "lang" || (len(key) == 1 && !isNameStart(key[0])) {
			return "$" + key
		}
		return os.Getenv(key)
	})
}

func isNameStart(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
