// Package environment names the deployment environments the moodlog tools
// run in and normalises the values read from configuration.
//
// The logger package uses it to pick output defaults:
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	log := logger.New(logger.WithEnvironment(env, "moodlog-session"))
package environment
