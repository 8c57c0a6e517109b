// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment.
//   - Load parses the environment into any struct annotated with `env` tags
//     and caches the result per type for the lifetime of the process.
//   - MustLoad / MustLoadEnv panic on failure for configuration that is
//     required at startup.
//   - ResetCache clears cached values, which tests use between cases.
//
// # Usage
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("load session config: %v", err)
//	}
//
// # Error Handling
//
// Sentinel errors can be compared with errors.Is:
//
//   - ErrParsingConfig – failed to parse env vars into struct.
//   - ErrLoadingEnvFile – a requested .env file could not be loaded.
//   - ErrNilPointer – nil pointer passed to Load / MustLoad.
package config
