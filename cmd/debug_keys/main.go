package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"photo-reconciler/core/config"
	"photo-reconciler/core/index"
	"photo-reconciler/core/metadata"
	"photo-reconciler/core/runlog"

	"github.com/spf13/afero"
)

// fileKeys is everything the matchers know about one file.
type fileKeys struct {
	Path           string `yaml:"path"`
	NameKey        string `yaml:"name_key"`
	FilenameKey    string `yaml:"filename_key,omitempty"`
	Created        string `yaml:"created,omitempty"`
	CreatedKey     string `yaml:"created_key,omitempty"`
	CaptureTime    string `yaml:"capture_time,omitempty"`
	CaptureSource  string `yaml:"capture_source"`
	TagCount       int    `yaml:"tag_count"`
	TagCountError  string `yaml:"tag_count_error,omitempty"`
	OffsetShiftSec int    `yaml:"offset_shift_seconds"`
}

// Prints how each file given on the command line is keyed, to investigate files
// that fail to match (e.g. across a daylight-saving change).
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_keys <file>...")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	fs := afero.NewOsFs()
	ctx := context.Background()
	now := time.Now()

	extractor, err := metadata.New(cfg.Metadata, fs, nil)
	if err != nil {
		log.Fatal(err)
	}
	resolver := metadata.NewResolver(extractor, true, nil)
	ix := index.NewIndexer(fs, nil)
	nameKeyer := index.NameKeyer{}
	filenameKeyer := index.NewFilenameTimestampKeyer(cfg.Timestamps.Suffix, cfg.Timestamps.Extensions)
	createdKeyer := index.CreatedTimeKeyer{Location: time.Local, ScanTime: now}

	var out []fileKeys
	for _, path := range os.Args[1:] {
		rec, err := ix.Stat(filepath.Dir(path), path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			continue
		}

		k := fileKeys{Path: path}
		k.NameKey, _ = nameKeyer.Key(rec)
		if key, ok := filenameKeyer.Key(rec); ok {
			k.FilenameKey = key
		}
		if rec.CreatedTime.Valid {
			created := rec.CreatedTime.Time
			k.Created = created.In(time.Local).Format(time.RFC3339)
			k.CreatedKey, _ = createdKeyer.Key(rec)
			k.OffsetShiftSec = int(createdKeyer.Correct(created).Sub(created) / time.Second)
		}

		res, err := resolver.Resolve(ctx, path)
		if err != nil {
			log.Fatal(err)
		}
		k.CaptureSource = string(res.Source)
		if res.Known() {
			k.CaptureTime = res.Time.Format(time.RFC3339)
		}
		if n, err := extractor.TagCount(ctx, path); err != nil {
			k.TagCountError = err.Error()
		} else {
			k.TagCount = n
		}

		fmt.Printf("=== %s ===\n", path)
		fmt.Printf("name key:      %s\n", k.NameKey)
		fmt.Printf("filename key:  %s\n", k.FilenameKey)
		fmt.Printf("created:       %s (shift %ds)\n", k.Created, k.OffsetShiftSec)
		fmt.Printf("created key:   %s\n", k.CreatedKey)
		fmt.Printf("capture time:  %s (%s)\n", k.CaptureTime, k.CaptureSource)
		fmt.Printf("tag count:     %d %s\n\n", k.TagCount, k.TagCountError)

		out = append(out, k)
	}

	if err := runlog.ExportYAML(fs, "debug_keys.yaml", out); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Debug complete. Check debug_keys.yaml for details.")
}
