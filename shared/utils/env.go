package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the trimmed value of key, or defaultValue when it is unset or blank.
func GetEnv(key, defaultValue string) string {
	return GetEnvFirst(defaultValue, key)
}

// GetEnvFirst returns the first non-blank value among keys, or defaultValue.
// MinIO style names (MINIO_ROOT_USER) and AWS names can then share a setting.
func GetEnvFirst(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

// GetEnvInt64 is used for byte sizes.
func GetEnvInt64(key string, defaultValue int64) int64 {
	return parseEnv(key, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// GetEnvBool accepts what strconv.ParseBool does.
func GetEnvBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, strconv.ParseBool)
}

// GetEnvDuration parses values like "300ms" or "2m30s".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration)
}

// parseEnv falls back to defaultValue when key is blank or does not parse.
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := GetEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := parse(raw)
	if err != nil {
		return defaultValue
	}
	return v
}
