package idfio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFileTolerant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idf.txt")
	content := "0\t1.5\n1\t2.25\nbad line\n2\tnotanumber\n\n3\t0.1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	idf, warnings, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want 2 entries", warnings)
	}
	if idf[0] != 1.5 || idf[1] != 2.25 || idf[3] != 0.1 {
		t.Fatalf("idf = %v, want {0:1.5 1:2.25 3:0.1}", idf)
	}
}

func TestDensifyDefaultsMissingToOne(t *testing.T) {
	sparse := map[int]float64{1: 3.0}
	dense := Densify(sparse, 4)
	want := []float64{1.0, 3.0, 1.0, 1.0}
	for i, v := range want {
		if dense[i] != v {
			t.Errorf("dense[%d] = %v, want %v", i, dense[i], v)
		}
	}
}

func TestCalculateCorpus(t *testing.T) {
	docs := [][]int{{0, 1}, {1, 2}, {1}}
	idf := CalculateCorpus(docs, 3)
	// token 1 appears in all 3 docs -> idf 0; token 0 in 1 doc -> ln(3);
	// token 2 in 1 doc -> ln(3).
	if idf[1] != 0 {
		t.Errorf("idf[1] = %v, want 0", idf[1])
	}
	want := math.Log(3)
	if math.Abs(idf[0]-want) > 1e-9 || math.Abs(idf[2]-want) > 1e-9 {
		t.Errorf("idf = %v, want idf[0]=idf[2]=%v", idf, want)
	}
}

func TestSaveThenParseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idf.txt")
	idf := []float64{1.0, 2.5, 0.0}
	if err := Save(path, idf); err != nil {
		t.Fatal(err)
	}
	got, warnings, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	for tok, v := range idf {
		if got[tok] != v {
			t.Errorf("idf[%d] = %v, want %v", tok, got[tok], v)
		}
	}
}
