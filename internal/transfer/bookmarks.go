package transfer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"xnav/internal/storage"
)

// BookmarksFile is the layout of bookmarks.toml:
//
//	[[bookmark]]
//	name = "work"
//	path = "/home/u/work"
type BookmarksFile struct {
	Bookmarks []BookmarkRecord `toml:"bookmark"`
}

// WriteBookmarksFile saves bookmarks to path as TOML.
func WriteBookmarksFile(path string, bookmarks []storage.Bookmark) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file := BookmarksFile{Bookmarks: make([]BookmarkRecord, 0, len(bookmarks))}
	for _, b := range bookmarks {
		file.Bookmarks = append(file.Bookmarks, BookmarkRecord(b))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bookmarks file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(file); err != nil {
		return fmt.Errorf("failed to encode bookmarks: %w", err)
	}
	return nil
}

// ReadBookmarksFile loads bookmarks.toml. Unknown keys are rejected so a
// typo does not silently drop a bookmark.
func ReadBookmarksFile(path string) ([]BookmarkRecord, error) {
	var file BookmarksFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	return file.Bookmarks, nil
}
