// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml, overlaid with environment variables
// (a .env file is honoured when present) and validated using struct tags.
// Every omitted field receives a default, so an empty file is a valid config.
package config
