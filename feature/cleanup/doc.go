// Package cleanup removes directories left empty after files were moved out of a tree.
// The root itself is never removed.
package cleanup
