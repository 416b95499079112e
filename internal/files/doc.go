// Package files implements the upload store: it sanitizes client-supplied
// filenames, enforces the allowed-extension policy, and writes uploads to a
// collision-safe location on disk.
package files
