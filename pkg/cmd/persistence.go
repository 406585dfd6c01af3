// Package cmd wires shared infrastructure for the flow binaries.
package cmd

import (
	"fmt"
	"strings"

	"github.com/convy/flow/pkg/persistence"
	"github.com/convy/flow/pkg/persistence/file"
	"github.com/convy/flow/pkg/persistence/redis"
)

// NewPersistence builds the storage driver named by the URL scheme:
// redis://host:port/db for Redis, anything else is treated as a file root.
func NewPersistence(databaseURL string) persistence.Persistence {
	switch parseProvider(databaseURL) {
	case "redis":
		persist, err := redis.NewPersistence(databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to connect to redis: %w", err))
		}

		return persist
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}

func parseProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
