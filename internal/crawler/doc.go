// Package crawler orchestrates catalog crawls: search, metadata upserts,
// raw file download, and object storage mirroring.
package crawler
