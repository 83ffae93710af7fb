package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"worktoolkit/internal/fileutil"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListPDFsFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b2.PDF"))
	touch(t, filepath.Join(dir, "a1.pdf"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "B1.pdf"))
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, filepath.Join(dir, "sub.pdf", "nested.pdf"))

	got, err := fileutil.ListPDFs(dir)
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	want := []string{"a1.pdf", "B1.pdf", "b2.PDF"}
	if len(got) != len(want) {
		t.Fatalf("got %d paths, want %d: %v", len(got), len(want), got)
	}
	for i, base := range want {
		if filepath.Base(got[i]) != base {
			t.Fatalf("position %d: got %s, want %s", i, filepath.Base(got[i]), base)
		}
		if !filepath.IsAbs(got[i]) {
			t.Fatalf("expected absolute path, got %s", got[i])
		}
	}
}

func TestSortPathsFoldIsTotal(t *testing.T) {
	paths := []string{"B.pdf", "a.pdf", "A.pdf", "b.pdf"}
	fileutil.SortPathsFold(paths)
	want := []string{"A.pdf", "a.pdf", "B.pdf", "b.pdf"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", paths, want)
		}
	}
}

func TestStem(t *testing.T) {
	if got := fileutil.Stem("/tmp/x/informe final.pdf"); got != "informe final" {
		t.Fatalf("Stem = %q", got)
	}
	if got := fileutil.Stem("noext"); got != "noext" {
		t.Fatalf("Stem = %q", got)
	}
}
