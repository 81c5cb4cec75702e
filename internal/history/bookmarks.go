package history

import (
	"context"
	"strings"

	"xnav/internal/errors"
	"xnav/internal/paths"
	"xnav/internal/storage"
)

// AddBookmark points name at path, replacing any previous target. An empty
// path means the working directory. The target does not have to exist.
func (s *Store) AddBookmark(ctx context.Context, name, path string) (*storage.Bookmark, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.InvalidArgument, "bookmark name is empty", nil)
	}
	canonical, err := paths.Canonicalize(path, s.cwd)
	if err != nil {
		return nil, errors.New(errors.InvalidArgument, "cannot resolve path "+path, err)
	}

	b := storage.Bookmark{Name: name, Path: canonical, CreatedAt: s.now()}
	err = s.db.WithTx(ctx, func(tx *storage.Tx) error {
		return tx.PutBookmark(ctx, b)
	})
	if err != nil {
		return nil, errors.Persistence("failed to save bookmark", err)
	}
	s.logger.Debug("Bookmark saved", "name", name, "path", canonical)
	return &b, nil
}

// RemoveBookmark deletes name. An unknown name is a PATH_NOT_FOUND error and
// leaves the database unchanged.
func (s *Store) RemoveBookmark(ctx context.Context, name string) error {
	var existed bool
	err := s.db.WithTx(ctx, func(tx *storage.Tx) error {
		var err error
		existed, err = tx.DeleteBookmark(ctx, name)
		return err
	})
	if err != nil {
		return errors.Persistence("failed to remove bookmark", err)
	}
	if !existed {
		return errors.Newf(errors.PathNotFound, "no bookmark named %q", name).
			WithFix(errors.FixAction{
				Type:        errors.RunCommand,
				Command:     "xnav bookmark list",
				Safe:        true,
				Description: "List existing bookmarks",
			})
	}
	return nil
}

// ListBookmarks returns every bookmark sorted by name.
func (s *Store) ListBookmarks(ctx context.Context) ([]storage.Bookmark, error) {
	out, err := s.db.ListBookmarks(ctx)
	if err != nil {
		return nil, errors.Persistence("failed to list bookmarks", err)
	}
	return out, nil
}

// FindBookmark returns the bookmark called name, or nil.
func (s *Store) FindBookmark(ctx context.Context, name string) (*storage.Bookmark, error) {
	b, err := s.db.FindBookmark(ctx, name)
	if err != nil {
		return nil, errors.Persistence("failed to read bookmark", err)
	}
	return b, nil
}
