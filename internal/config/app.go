package config

import (
	"os"
	"strings"
)

const defaultAddr = ":8080"

// Addr is the listen address of the game server, ":8080" unless APP_PORT
// is set. A bare port number is accepted.
func Addr() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return defaultAddr
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

// BasePath is the prefix all routes are mounted under, e.g. "/api".
func BasePath() string {
	return strings.TrimSuffix(os.Getenv("APP_BASE_PATH"), "/")
}
