// Package db provides the PostgreSQL layer: connection string parsing and
// resolution, connectors for standard and cloud IAM authentication, the pool
// adapter behind the public DBConnection interface, and the metadata store.
package db
