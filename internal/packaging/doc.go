// Package packaging derives the data-file layout and build targets for the
// bundled extensions, makes sure the JavaScript build has produced them, and
// composes the packaging command graph (build, stage, archive).
//
// Everything here except EnsureBuilt and Graph.Run is pure: the same name
// list always yields the same specs and targets.
package packaging
