// Package index walks a directory tree and builds an in-memory index of the
// regular files it contains.
//
// Files are grouped under a normalized key produced by a Keyer. Several files may
// share a key; all of them are retained in discovery order so that callers can
// detect duplicates instead of silently losing them. Files the Keyer cannot key are
// kept aside in DirectoryIndex.Unkeyed, so every regular file seen during the walk
// ends up in exactly one place.
//
// # Keyers
//
//   - NameKeyer: case-folded file name
//   - FilenameTimestampKeyer: capture instant parsed from names like 20230615_123456789_iOS.mov
//   - CreatedTimeKeyer: file creation time corrected to UTC
//
// # Usage
//
//	idx, err := index.NewIndexer(afero.NewOsFs(), log).Index(ctx, "/photos", index.NameKeyer{})
//	if err != nil {
//	    return err
//	}
//	for _, key := range idx.Keys() {
//	    fmt.Println(key, len(idx.Lookup(key)))
//	}
package index
