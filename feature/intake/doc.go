// Package intake brings new files from a source tree into a flat destination.
//
// A run resolves a capture date for every source file that is missing at the
// destination, optionally writes folder-derived dates into the file, and moves dated
// files across. Source files that already exist at the destination with the same size
// and the same number of metadata tags are offered for deletion first.
package intake
