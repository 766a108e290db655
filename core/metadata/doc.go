// Package metadata reads embedded photo and video metadata.
//
// Two questions are asked of a file: when was it captured, and how many metadata
// tags does it carry. Both are answered by an Extractor. Any failure (missing tool,
// unreadable file, no EXIF block) is reported as ErrUnavailable so callers can fall
// back to a folder-derived date or a zero tag count.
//
// Backends:
//   - ExifReader decodes EXIF natively with goexif. It needs no external tools but
//     only understands JPEG/TIFF-style containers.
//   - ExifTool shells out to exiftool, which understands every container (HEIC, MOV,
//     PNG, ...) and can also write DateTimeOriginal.
//
// Resolver layers filename and folder fallbacks on top of an Extractor.
package metadata
