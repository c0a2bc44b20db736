// Package manifest parses and validates the two descriptors that travel with
// every packaged extension: the extension's own package.json, produced by the
// JavaScript build, and the shared install.json, copied from the project root.
// Both are validated against JSON schemas embedded from schema/.
package manifest
