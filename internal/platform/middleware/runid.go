package middleware

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunIDField is the log field that correlates every line of one invocation.
const RunIDField = "run_id"

// WithRunID returns a child logger tagged with a fresh run ID. An explicit
// id is kept when non-empty.
func WithRunID(logger zerolog.Logger, id string) (zerolog.Logger, string) {
	if id == "" {
		id = uuid.New().String()
	}
	return logger.With().Str(RunIDField, id).Logger(), id
}
