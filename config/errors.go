package config

import "errors"

var (
	// ErrParse indicates the configuration file is not valid TOML.
	ErrParse = errors.New("config parse error")

	// ErrInvalidConfig indicates a setting is out of range or unknown.
	ErrInvalidConfig = errors.New("invalid configuration")
)
