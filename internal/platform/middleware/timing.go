package middleware

import (
	"time"

	"github.com/rs/zerolog"
)

// Timed runs fn and logs the operation name with its elapsed time.
func Timed(logger zerolog.Logger, op string, fn func() error) error {
	_, err := TimedResult(logger, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// TimedResult is Timed for calls that produce a value. Successful calls are
// logged at debug level, failures at error level.
func TimedResult[T any](logger zerolog.Logger, op string, fn func() (T, error)) (T, error) {
	start := time.Now()

	result, err := fn()

	evt := logger.Debug()
	if err != nil {
		evt = logger.Error().Err(err)
	}

	evt.
		Str("operation", op).
		Dur("elapsed", time.Since(start)).
		Msg("operation completed")

	return result, err
}
