// Package stage materializes data-file specs into an installation prefix,
// producing the share/jupyter/labextensions tree that gets archived.
package stage
