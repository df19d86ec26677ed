// Command brecimport imports recorder output that the catalog has not seen
// yet.
//
// It scans a recording directory, works out each file's room and broadcast
// session, and registers new parts either through the catalog server's HTTP
// API (--url) or directly in its database (--db). Runs are idempotent: files
// already in the catalog are skipped. Per-file failures are reported in the
// final summary and never stop the run.
package main
