// Package catalog defines the port the importer uses to talk to a recording
// catalog.
//
// Two adapters implement it: remote (the catalog server's HTTP API) and
// sqlitestore (the catalog database opened directly). The importer selects one
// at startup and never knows which it holds.
package catalog
