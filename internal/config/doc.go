// Package config manages project-level settings stored in labpack.yaml at the
// project root. Values can be overridden by LABPACK_* environment variables
// and by command-line flags bound through Viper.
package config
