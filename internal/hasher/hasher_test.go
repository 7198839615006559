package hasher

import (
	"bytes"
	"testing"

	"ragalign/internal/tf"
)

func TestIntHasherDeterministic(t *testing.T) {
	h1 := NewIntHasher(4, 100, 42)
	h2 := NewIntHasher(4, 100, 42)
	for hid := 0; hid < 4; hid++ {
		for tok := 0; tok < 10; tok++ {
			a := h1.Eval(hid, tok, tok+1)
			b := h2.Eval(hid, tok, tok+1)
			if a != b {
				t.Fatalf("same seed produced different hash: hid=%d tok=%d %d != %d", hid, tok, a, b)
			}
		}
	}
}

func TestIntHasherDifferentSeeds(t *testing.T) {
	h1 := NewIntHasher(1, 100, 1)
	h2 := NewIntHasher(1, 100, 2)
	same := true
	for tok := 0; tok < 20; tok++ {
		if h1.Eval(0, tok, 1) != h2.Eval(0, tok, 1) {
			same = false
		}
	}
	if same {
		t.Error("different seeds should eventually disagree over 20 tokens")
	}
}

func TestIntHasherRange(t *testing.T) {
	h := NewIntHasher(1, 1000, 7)
	for tok := 0; tok < 1000; tok++ {
		v := h.Eval(0, tok, 3)
		if v < 0 || v >= P {
			t.Fatalf("Eval out of range [0,%d): %d", P, v)
		}
	}
}

func TestRealHasherDeterministic(t *testing.T) {
	h1, err := NewRealHasher(2, 50, 99, tf.Raw, false, nil, 1024)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := NewRealHasher(2, 50, 99, tf.Raw, false, nil, 1024)
	if err != nil {
		t.Fatal(err)
	}
	for hid := 0; hid < 2; hid++ {
		for tok := 0; tok < 50; tok++ {
			a := h1.Eval(hid, tok, 2.0)
			b := h2.Eval(hid, tok, 2.0)
			if a != b {
				t.Fatalf("same seed produced different real hash: %v != %v", a, b)
			}
		}
	}
}

func TestRealHasherZeroWeightIsInfinity(t *testing.T) {
	h, err := NewRealHasher(1, 10, 1, tf.Raw, false, nil, 16)
	if err != nil {
		t.Fatal(err)
	}
	v := h.Eval(0, 0, 0)
	if !(v > 1e300) {
		t.Errorf("Eval with zero weight should be +Inf-like, got %v", v)
	}
}

func TestRealHasherIDFLengthMismatch(t *testing.T) {
	_, err := NewRealHasher(1, 10, 1, tf.Raw, true, []float64{1, 2, 3}, 16)
	if err == nil {
		t.Error("mismatched idf length should error")
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := &State{K: 3, TokenNum: 5, Seed: 123, TFMode: tf.LogNorm, UseIDF: true, IDF: []float64{1, 2, 3, 4, 5}}
	var buf bytes.Buffer
	if err := WriteState(&buf, s); err != nil {
		t.Fatal(err)
	}
	got, err := ReadState(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.K != s.K || got.TokenNum != s.TokenNum || got.Seed != s.Seed || got.TFMode != s.TFMode || got.UseIDF != s.UseIDF {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, s)
	}
	for i := range s.IDF {
		if got.IDF[i] != s.IDF[i] {
			t.Fatalf("idf[%d] mismatch: %v vs %v", i, got.IDF[i], s.IDF[i])
		}
	}
}

func TestPrecisionDerivation(t *testing.T) {
	s := &State{TFMode: tf.Raw, UseIDF: false}
	if s.Precision() != Integer {
		t.Error("Raw + no IDF should be Integer precision")
	}
	s2 := &State{TFMode: tf.Raw, UseIDF: true}
	if s2.Precision() != Real {
		t.Error("Raw + IDF should be Real precision")
	}
	s3 := &State{TFMode: tf.LogNorm, UseIDF: false}
	if s3.Precision() != Real {
		t.Error("non-Raw mode should be Real precision")
	}
}
