// Package compare reconciles a source tree into a destination tree by file name.
//
// A run indexes both trees, writes a comparison report, and then offers three
// stages, each confirmed separately:
//
//   - move: files only present in the source are moved to the destination
//   - rename: files whose size differs are moved next to the destination copy under
//     a suffixed name, so both versions are kept
//   - overwrite: for same-name same-size pairs, the source replaces the destination
//     when it carries more metadata tags; the destination is backed up first
//
// Names that occur more than once on either side are reported and never touched.
package compare
