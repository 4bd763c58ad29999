// Package config loads hexstorm's TOML configuration.
//
// A missing configuration file is not an error; defaults apply. Values
// outside sane bounds are clamped rather than rejected, so a bad config
// never prevents opening a file.
package config
