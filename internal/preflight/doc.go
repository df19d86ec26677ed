// Package preflight provides readiness checks for the paths and services an
// import run depends on.
//
// The CLI runs them once before touching any recording. A failed check is a
// fatal setup error: the run stops with exit status 1 instead of failing every
// file the same way. Checks are selected by the configured backend.
package preflight
