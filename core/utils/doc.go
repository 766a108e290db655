// Package utils provides common utility functions for the photo-reconciler application.
// It includes helpers for converting loosely typed metadata values, formatting byte
// counts for run logs, and the clock and ID seams that keep the pipeline deterministic
// under test.
package utils
