package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alienxp03/triad/internal/core"
)

// envPrefix marks the environment variables triad reads.
const envPrefix = "TRIAD_"

// LoadEnv reads a .env file and returns its key-value pairs.
func LoadEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// ProcessEnv returns the TRIAD_ variables of the current process.
func ProcessEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, envPrefix) {
			env[key] = value
		}
	}
	return env
}

// ApplyEnvOverrides updates the configuration based on environment variables.
// Values that fail to parse are ignored.
func ApplyEnvOverrides(cfg *Config, env map[string]string) {
	// Server
	if val, ok := env["TRIAD_SERVER_PORT"]; ok {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}

	// Defaults
	if val, ok := env["TRIAD_MAX_ROUNDS"]; ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Defaults.MaxRounds = n
		}
	}

	if val, ok := env["TRIAD_DB_PATH"]; ok {
		cfg.Storage.Path = val
	}
	if val, ok := env["TRIAD_SCRIPT_PATH"]; ok {
		cfg.Script.Path = val
	}

	// Source per participant
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}
	for _, p := range core.Participants() {
		envKey := fmt.Sprintf("%sSOURCE_%s", envPrefix, strings.ToUpper(p.String()))
		if val, ok := env[envKey]; ok && val != "" {
			cfg.Sources[p.String()] = val
		}
	}
}
