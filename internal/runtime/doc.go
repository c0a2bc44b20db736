// Package runtime runs the JavaScript package manager that installs the
// workspace dependencies and produces the production build of every bundled
// extension.
package runtime
