// Package config loads and validates application configuration from
// environment variables (PHYSIOQC_ prefix) merged over an optional YAML
// file. Environment variables win.
package config
