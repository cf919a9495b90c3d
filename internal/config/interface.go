package config

import (
	"context"

	"github.com/vk/lfdeploy/internal/model"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the configuration file at path and applies it on top of
	// base, returning the merged model. base is not modified.
	Load(ctx context.Context, path string, base *Model) (*Model, error)
}

// ArtifactNamer derives the staged file name for one role of a program.
type ArtifactNamer interface {
	ArtifactName(program string, role model.Role) (string, error)
}
