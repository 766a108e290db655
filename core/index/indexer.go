package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Indexer scans directory trees on a filesystem.
type Indexer struct {
	fs         afero.Fs
	log        *zap.Logger
	extensions map[string]struct{}
}

// NewIndexer creates an Indexer over fs. A nil logger disables logging.
func NewIndexer(fs afero.Fs, log *zap.Logger) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{fs: fs, log: log}
}

// WithExtensions returns a copy of the Indexer that only records files with one of
// the given extensions (case-insensitive, leading dot optional).
func (ix *Indexer) WithExtensions(extensions ...string) *Indexer {
	cp := *ix
	cp.extensions = extensionSet(extensions)
	return &cp
}

// Index walks root and groups every regular file under the key produced by keyer.
// It fails only when root is missing or is not a directory; unreadable entries are
// recorded in DirectoryIndex.Errors and the walk continues.
func (ix *Indexer) Index(ctx context.Context, root string, keyer Keyer) (*DirectoryIndex, error) {
	info, err := ix.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	idx := NewDirectoryIndex(root, keyer.Name())

	walkErr := afero.Walk(ix.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			ix.log.Warn("Failed to read path", zap.String("path", path), zap.Error(err))
			idx.Errors = append(idx.Errors, ScanError{Path: path, Err: err})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !allowed(ix.extensions, filepath.Ext(info.Name())) {
			return nil
		}

		rec := ix.record(root, path, info)
		if key, ok := keyer.Key(rec); ok {
			idx.Add(key, rec)
		} else {
			idx.Unkeyed = append(idx.Unkeyed, rec)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, walkErr)
	}

	ix.log.Debug("Indexed directory",
		zap.String("root", root),
		zap.String("keyer", keyer.Name()),
		zap.Int("keys", idx.Len()),
		zap.Int("files", idx.FileCount()),
		zap.Int("unkeyed", len(idx.Unkeyed)),
		zap.Int("errors", len(idx.Errors)),
	)

	return idx, nil
}

// Stat builds a FileRecord for a single path relative to root.
func (ix *Indexer) Stat(root, path string) (FileRecord, error) {
	info, err := ix.fs.Stat(path)
	if err != nil {
		return FileRecord{}, err
	}
	return ix.record(root, path, info), nil
}

func (ix *Indexer) record(root, path string, info os.FileInfo) FileRecord {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = info.Name()
	}

	created, ok := creationTime(info)
	if !ok {
		created = info.ModTime()
	}

	return FileRecord{
		Name:        info.Name(),
		Path:        path,
		RelPath:     rel,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		CreatedTime: sql.NullTime{Time: created, Valid: !created.IsZero()},
	}
}
