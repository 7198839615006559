package index

import (
	"path/filepath"
	"testing"

	"ragalign/internal/cw"
	"ragalign/internal/hasher"
	"ragalign/internal/tf"
)

func TestSaveLoadIntRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idx.bin")

	state := &hasher.State{K: 2, TokenNum: 5, Seed: 7, TFMode: tf.Raw, UseIDF: false}
	table := [][]cw.CW[int]{
		{cw.New(0, 3, 0, 1, 2, 3)},
		{cw.New(0, 5, 0, 0, 0, 0), cw.New(1, 9, 1, 1, 1, 1)},
	}
	if err := Save(path, 2, 5, state, table); err != nil {
		t.Fatal(err)
	}

	hdr, err := PeekHeader(path)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.K != 2 || hdr.TokenNum != 5 {
		t.Fatalf("header = %+v, want K=2 TokenNum=5", hdr)
	}
	if hdr.Hasher.Precision() != hasher.Integer {
		t.Errorf("Precision() = %v, want Integer", hdr.Hasher.Precision())
	}

	_, gotTable, err := Load[int](path)
	if err != nil {
		t.Fatal(err)
	}
	for hid := range table {
		if len(gotTable[hid]) != len(table[hid]) {
			t.Fatalf("hid %d: got %d records, want %d", hid, len(gotTable[hid]), len(table[hid]))
		}
		for i := range table[hid] {
			if gotTable[hid][i] != table[hid][i] {
				t.Fatalf("hid %d rec %d: got %+v, want %+v", hid, i, gotTable[hid][i], table[hid][i])
			}
		}
	}
}

func TestSaveLoadRealRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idx.bin")

	state := &hasher.State{K: 1, TokenNum: 3, Seed: 1, TFMode: tf.LogNorm, UseIDF: true, IDF: []float64{1.1, 2.2, 3.3}}
	table := [][]cw.CW[float64]{
		{cw.New(0, 1.5, 0, 0, 0, 0)},
	}
	if err := Save(path, 1, 3, state, table); err != nil {
		t.Fatal(err)
	}

	hdr, err := PeekHeader(path)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Hasher.Precision() != hasher.Real {
		t.Errorf("Precision() = %v, want Real", hdr.Hasher.Precision())
	}
	if len(hdr.Hasher.IDF) != 3 {
		t.Fatalf("idf length = %d, want 3", len(hdr.Hasher.IDF))
	}

	_, gotTable, err := Load[float64](path)
	if err != nil {
		t.Fatal(err)
	}
	if gotTable[0][0].V != 1.5 {
		t.Errorf("v = %v, want 1.5", gotTable[0][0].V)
	}
}
