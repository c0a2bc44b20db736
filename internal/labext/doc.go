// Package labext is the single source of truth for the front-end extensions
// bundled in the distribution. The packaging orchestrator and the host
// discovery payload are both derived from the list held here.
package labext
