// Package importer reconciles recording files against a catalog.
//
// Each file walks a fixed sequence of steps (extract, room check, duplicate
// check, session resolve, part create) and ends imported, skipped, or failed.
// Files run one at a time in path order so a later file always sees the
// session an earlier file created. One file's failure never stops the batch;
// the run's counts and first errors come back as a Summary.
package importer
