package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure, e.g. a podium size
	// below 1 or an unknown log format.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps provider and unmarshal failures.
	ErrLoadConfig = errors.New("load config failed")
)
