// Package transfer exports and imports the history as portable snapshots.
package transfer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"xnav/internal/errors"
	"xnav/internal/storage"
	"xnav/internal/version"
)

// SnapshotVersion is the snapshot layout written by this build.
const SnapshotVersion = 1

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", errors.Newf(errors.InvalidArgument, "unknown format %q (want json, yaml or toml)", s)
	}
}

// FormatFromPath picks a format from the file extension, ignoring a trailing
// .gz. Unknown extensions mean JSON.
func FormatFromPath(path string) Format {
	path = strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Snapshot is the exported history.
type Snapshot struct {
	ID          string           `json:"id" yaml:"id" toml:"id"`
	CreatedAt   time.Time        `json:"created_at" yaml:"created_at" toml:"created_at"`
	Version     int              `json:"version" yaml:"version" toml:"version"`
	XnavVersion string           `json:"xnav_version,omitempty" yaml:"xnav_version,omitempty" toml:"xnav_version,omitempty"`
	Entries     []EntryRecord    `json:"entries" yaml:"entries" toml:"entries"`
	Bookmarks   []BookmarkRecord `json:"bookmarks" yaml:"bookmarks" toml:"bookmarks"`
}

// EntryRecord is one exported directory.
type EntryRecord struct {
	Path         string    `json:"path" yaml:"path" toml:"path"`
	Visits       int64     `json:"visits" yaml:"visits" toml:"visits"`
	LastAccessed time.Time `json:"last_accessed" yaml:"last_accessed" toml:"last_accessed"`
	FirstSeen    time.Time `json:"first_seen" yaml:"first_seen" toml:"first_seen"`
}

// BookmarkRecord is one exported bookmark.
type BookmarkRecord struct {
	Name      string    `json:"name" yaml:"name" toml:"name"`
	Path      string    `json:"path" yaml:"path" toml:"path"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
}

// Build reads the whole database into a snapshot. Entries are sorted by
// path so repeated exports of the same data differ only in id and time.
func Build(ctx context.Context, db *storage.DB, now time.Time) (*Snapshot, error) {
	entries, err := db.ListEntries(ctx)
	if err != nil {
		return nil, errors.Persistence("failed to read history", err)
	}
	bookmarks, err := db.ListBookmarks(ctx)
	if err != nil {
		return nil, errors.Persistence("failed to read bookmarks", err)
	}

	snap := &Snapshot{
		ID:          uuid.NewString(),
		CreatedAt:   now.UTC(),
		Version:     SnapshotVersion,
		XnavVersion: version.Version,
		Entries:     make([]EntryRecord, 0, len(entries)),
		Bookmarks:   make([]BookmarkRecord, 0, len(bookmarks)),
	}
	for _, e := range entries {
		snap.Entries = append(snap.Entries, EntryRecord(e))
	}
	slices.SortFunc(snap.Entries, func(a, b EntryRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
	for _, b := range bookmarks {
		snap.Bookmarks = append(snap.Bookmarks, BookmarkRecord(b))
	}
	return snap, nil
}

// Encode writes snap to w, gzip-compressed when compress is set.
func Encode(w io.Writer, snap *Snapshot, format Format, compress bool) error {
	data, err := marshal(snap, format)
	if err != nil {
		return err
	}
	if !compress {
		_, err = w.Write(data)
		return err
	}

	zw := gzip.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	return zw.Close()
}

func marshal(snap *Snapshot, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(snap, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(snap)
	case FormatTOML:
		data, err = toml.Marshal(snap)
	default:
		return nil, errors.Newf(errors.InvalidArgument, "unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// Decode reads a snapshot in the given format. Gzip input is detected from
// its magic bytes.
func Decode(r io.Reader, format Format) (*Snapshot, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.New(errors.InvalidArgument, "corrupt gzip snapshot", err)
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(errors.InvalidArgument, "failed to read snapshot", err)
	}

	var snap Snapshot
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &snap)
	case FormatYAML:
		err = yaml.Unmarshal(data, &snap)
	case FormatTOML:
		err = toml.Unmarshal(data, &snap)
	default:
		return nil, errors.Newf(errors.InvalidArgument, "unknown format %q", format)
	}
	if err != nil {
		return nil, errors.New(errors.InvalidArgument, "failed to decode snapshot", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks the snapshot can be imported.
func (s *Snapshot) Validate() error {
	if s.Version < 1 || s.Version > SnapshotVersion {
		return errors.Newf(errors.InvalidArgument, "unsupported snapshot version %d", s.Version)
	}
	for i, e := range s.Entries {
		if !filepath.IsAbs(e.Path) {
			return errors.Newf(errors.InvalidArgument, "entry %d: path %q is not absolute", i, e.Path)
		}
		if e.Visits < 1 {
			return errors.Newf(errors.InvalidArgument, "entry %d: visits must be at least 1", i)
		}
	}
	for i, b := range s.Bookmarks {
		if strings.TrimSpace(b.Name) == "" {
			return errors.Newf(errors.InvalidArgument, "bookmark %d: empty name", i)
		}
	}
	return nil
}
