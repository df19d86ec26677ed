// Package sqlitestore implements the catalog port directly against the
// catalog server's SQLite database.
//
// The database must already exist; the importer never creates or migrates it.
// Column sets vary between catalog releases, so Open probes the tables once
// and the resulting Schema decides which optional columns every insert
// carries. A lock file next to the database keeps two importer runs from
// writing at the same time, and each recording's session and part rows are
// written in one transaction.
package sqlitestore
