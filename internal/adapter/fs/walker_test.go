package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
}

func paths(files []FileInfo, root string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		set[filepath.ToSlash(rel)] = true
	}
	return set
}

func TestWalkDefaultPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "biology.pdf")
	writeFile(t, root, "notes/chemistry.txt")
	writeFile(t, root, "notes/summary.md")
	writeFile(t, root, "ignore.docx")

	files, err := NewWalker(nil, nil).Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	got := paths(files, root)
	for _, want := range []string{"biology.pdf", "notes/chemistry.txt", "notes/summary.md"} {
		if !got[want] {
			t.Errorf("expected %s in walk results", want)
		}
	}
	if got["ignore.docx"] {
		t.Error("docx should not match default patterns")
	}
}

func TestWalkExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.pdf")
	writeFile(t, root, "drafts/skip.pdf")

	files, err := NewWalker([]string{"**/*.pdf"}, []string{"drafts/**"}).Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	got := paths(files, root)
	if !got["keep.pdf"] {
		t.Error("keep.pdf missing from results")
	}
	if got["drafts/skip.pdf"] {
		t.Error("excluded file leaked into results")
	}
}

func TestWalkReportsSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "book.txt")

	files, err := NewWalker([]string{"**/*.txt"}, nil).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Size != int64(len("content")) {
		t.Errorf("size mismatch: %d", files[0].Size)
	}
}

func TestWalkEmptyDir(t *testing.T) {
	files, err := NewWalker(nil, nil).Walk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}
