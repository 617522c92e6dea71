package env

import "os"

// Get returns the value of the environment variable or the fallback when unset.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
