// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (reading .env files) and
// github.com/caarlos0/env/v11 (parsing tagged structs). Every package that
// needs settings declares a Config struct with `env` and `envDefault` tags,
// for example session.Config or httpserver.Config, and the binary loads them:
//
//	var sessCfg session.Config
//	config.MustLoad(&sessCfg)
//
//	mgr := session.NewFromConfig(sessCfg)
//
// Errors wrap ErrParsingConfig or ErrEnvFile and can be checked with errors.Is.
package config
