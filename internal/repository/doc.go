// Package repository defines the data access interfaces for the generation catalog.
//
// Every generation writes a RailJSON document to disk; the catalog remembers
// which script produced it, where it went, its fingerprint and, once imported,
// the infrastructure id assigned by the infrastructure service. The actual
// implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation runs on modernc.org/sqlite with WAL mode. The
// schema is created on startup. Lookups of a missing run return ErrNotFound.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
