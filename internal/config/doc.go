// Package config loads and validates weft.yaml configuration files.
package config
