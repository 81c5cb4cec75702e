package history

import (
	"context"
	"path/filepath"
	"testing"

	"xnav/internal/errors"
)

func TestAddBookmark(t *testing.T) {
	ctx := context.Background()
	s, root := setupStore(t, nil)
	mkdirs(t, root, "proj")

	b, err := s.AddBookmark(ctx, "p", "proj")
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if b.Path != filepath.Join(root, "proj") {
		t.Errorf("path = %s", b.Path)
	}

	got, err := s.FindBookmark(ctx, "p")
	if err != nil || got == nil || got.Path != b.Path {
		t.Fatalf("FindBookmark = %+v, %v", got, err)
	}
}

func TestAddBookmarkDefaultsToWorkingDir(t *testing.T) {
	s, root := setupStore(t, nil)

	b, err := s.AddBookmark(context.Background(), "here", "")
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if b.Path != root {
		t.Errorf("path = %s, want %s", b.Path, root)
	}
}

func TestAddBookmarkOverwrites(t *testing.T) {
	ctx := context.Background()
	s, root := setupStore(t, nil)
	mkdirs(t, root, "old", "new")

	s.AddBookmark(ctx, "x", "old")
	s.AddBookmark(ctx, "x", "new")

	list, err := s.ListBookmarks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Path != filepath.Join(root, "new") {
		t.Errorf("bookmarks = %+v", list)
	}
}

func TestAddBookmarkEmptyName(t *testing.T) {
	s, _ := setupStore(t, nil)
	_, err := s.AddBookmark(context.Background(), " ", "")
	if !errors.HasCode(err, errors.InvalidArgument) {
		t.Errorf("error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestRemoveBookmark(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t, nil)
	s.AddBookmark(ctx, "a", "")
	s.AddBookmark(ctx, "b", "")

	if err := s.RemoveBookmark(ctx, "a"); err != nil {
		t.Fatalf("RemoveBookmark failed: %v", err)
	}

	err := s.RemoveBookmark(ctx, "missing")
	if !errors.HasCode(err, errors.PathNotFound) {
		t.Errorf("error = %v, want PATH_NOT_FOUND", err)
	}

	list, _ := s.ListBookmarks(ctx)
	if len(list) != 1 || list[0].Name != "b" {
		t.Errorf("bookmarks = %+v, want only b", list)
	}
}

func TestListBookmarksSorted(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t, nil)
	for _, n := range []string{"zeta", "alpha", "mid"} {
		s.AddBookmark(ctx, n, "")
	}

	list, err := s.ListBookmarks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, n := range want {
		if list[i].Name != n {
			t.Errorf("position %d = %s, want %s", i, list[i].Name, n)
		}
	}
}
