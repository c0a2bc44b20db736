// Package cli defines the Cobra command tree for the labpack CLI. Each file
// registers one top-level command with the root command. Commands resolve the
// project configuration and delegate to the internal packages.
package cli
