package config

import "errors"

var (
	// ErrParsingConfig indicates environment variables could not be decoded into the target struct
	ErrParsingConfig = errors.New("config.parse")

	// ErrLoadingEnvFile indicates a requested .env file could not be read
	ErrLoadingEnvFile = errors.New("config.env_file")

	// ErrNilPointer indicates Load was given a nil target
	ErrNilPointer = errors.New("config.nil_target")
)
