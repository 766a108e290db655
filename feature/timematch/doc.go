// Package timematch finds source videos that already exist in the destination by
// comparing the timestamp encoded in their file name with the creation time of
// destination files, and offers to delete the matched sources.
//
// Source names look like 20230615_123456789_iOS.mov: date, underscore, time with
// milliseconds, a suffix marker and the extension. The encoded time is UTC.
// Destination creation times are shifted to UTC with the offset in effect when the
// scan runs, so files created on the other side of a daylight-saving change will
// not match.
package timematch
