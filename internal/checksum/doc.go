// Package checksum computes SHA-256 digests of raw data files.
//
// IDAT files are opaque binary blobs, so the digest is always taken over the
// raw bytes. Checksums let re-crawls detect silently changed supplementary
// files and let downstream consumers verify object storage integrity.
package checksum
