// Package survey counts the images under a directory, split by whether they carry an
// embedded capture date, and groups them by year and month.
package survey
