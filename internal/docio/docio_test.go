package docio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	docs := [][]int{{1, 2, 3}, {}, {42}}
	var buf bytes.Buffer
	if err := WriteDocs(&buf, docs); err != nil {
		t.Fatal(err)
	}
	got, err := ReadDocs(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(docs) {
		t.Fatalf("got %d docs, want %d", len(got), len(docs))
	}
	for i := range docs {
		if len(got[i]) != len(docs[i]) {
			t.Fatalf("doc %d: got len %d, want %d", i, len(got[i]), len(docs[i]))
		}
		for j := range docs[i] {
			if got[i][j] != docs[i][j] {
				t.Fatalf("doc %d tok %d: got %d, want %d", i, j, got[i][j], docs[i][j])
			}
		}
	}
}

func TestReadRange(t *testing.T) {
	docs := [][]int{{1}, {2, 2}, {3, 3, 3}, {4, 4, 4, 4}, {5}}
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteDocs(f, docs); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := ReadRange(path, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || len(got[0]) != 3 || len(got[1]) != 4 {
		t.Fatalf("ReadRange(2,2) = %+v, want docs[2:4]", got)
	}
}

func TestReadRangeBeyondEnd(t *testing.T) {
	docs := [][]int{{1}, {2}}
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.bin")
	f, _ := os.Create(path)
	WriteDocs(f, docs)
	f.Close()

	got, err := ReadRange(path, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadRange past EOF should return what's available, got %d docs", len(got))
	}
}
