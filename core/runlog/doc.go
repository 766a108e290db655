// Package runlog writes the human-readable audit logs produced by every run.
//
// Each stage writes one file named <prefix>_<YYYYmmdd_HHMMSS>.txt into the log
// directory. A log has a header, a SUMMARY section, and then one block of
// "Key: Value" lines per item, separated by dashed rules. The files are meant for
// people; nothing reads them back.
//
// Comparisons can additionally be exported as YAML for scripting.
package runlog
