package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// updateGolden rewrites golden files instead of comparing.
// Use: go test ./... -update
var updateGolden = flag.Bool("update", false, "update golden files")

// GoldenPath returns testdata/<name>.golden relative to the package under test.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name+".golden")
}

// CompareGolden compares got with testdata/<name>.golden, failing with a
// diff on mismatch. With -update the file is written instead.
func CompareGolden(t *testing.T, name string, got []byte) {
	t.Helper()

	goldenPath := GoldenPath(name)
	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("Failed to create testdata directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, got, 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create:\n  go test ./... -run %s -update",
				goldenPath, got, t.Name())
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if !bytes.Equal(got, expected) {
		t.Fatalf("Golden mismatch for %s:\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
			name, unifiedDiff(string(expected), string(got), goldenPath), t.Name())
	}
}

// unifiedDiff is a line-by-line diff with up to three lines of leading
// context per hunk.
func unifiedDiff(expected, got, path string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s (expected)\n", path)
	fmt.Fprintf(&buf, "+++ %s (got)\n", path)

	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")
	n := max(len(expectedLines), len(gotLines))

	line := func(lines []string, i int) (string, bool) {
		if i < len(lines) {
			return lines[i], true
		}
		return "", false
	}

	lastPrinted := -1
	for i := 0; i < n; i++ {
		exp, hasExp := line(expectedLines, i)
		g, hasGot := line(gotLines, i)
		if hasExp && hasGot && exp == g {
			continue
		}
		if i-lastPrinted > 1 {
			fmt.Fprintf(&buf, "@@ line %d @@\n", i+1)
			for j := max(lastPrinted+1, i-3); j < i; j++ {
				buf.WriteString(" " + expectedLines[j] + "\n")
			}
		}
		if hasExp {
			buf.WriteString("-" + exp + "\n")
		}
		if hasGot {
			buf.WriteString("+" + g + "\n")
		}
		lastPrinted = i
	}
	return buf.String()
}

// NormalizeOutput replaces each root with a placeholder so command output
// from temporary directories compares stably. Pairs are old, new.
func NormalizeOutput(s string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(s)
}
