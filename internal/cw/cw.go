// Package cw defines the Compressed Window record: the rectangle
// (a<=i<=b, c<=j<=d) inside one document, under one hash function, where
// every sub-range [i,j] has the same min-hash value v.
package cw

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"ragalign/internal/wtype"
)

// CW is a single compressed window record.
type CW[W wtype.Weight] struct {
	T    int32
	A, B, C, D int32
	V    W
}

// New builds a CW record. Positions are token indices, T is the document
// id, v is the window's shared min-hash value.
func New[W wtype.Weight](docID int, v W, a, b, c, d int) CW[W] {
	return CW[W]{T: int32(docID), A: int32(a), B: int32(b), C: int32(c), D: int32(d), V: v}
}

// Covers reports whether (i,j) falls inside this window.
func (w CW[W]) Covers(i, j int) bool {
	return int(w.A) <= i && i <= int(w.B) && int(w.C) <= j && j <= int(w.D)
}

// WriteTo writes one CW record in the §6 on-disk layout: T, a, b, c, d, v.
// v is written as int32 in the Integer precision (W == int) and as float64
// in the Real precision (W == float64) — encoding/binary rejects the
// platform-sized builtin int directly, and §6 mandates a fixed-width int32
// on disk regardless.
func WriteTo[W wtype.Weight](w io.Writer, rec CW[W]) error {
	for _, v := range [5]int32{rec.T, rec.A, rec.B, rec.C, rec.D} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("cw: write field: %w", err)
		}
	}
	if err := writeWeight(w, rec.V); err != nil {
		return fmt.Errorf("cw: write v: %w", err)
	}
	return nil
}

// ReadFrom reads one CW record.
func ReadFrom[W wtype.Weight](r io.Reader, rec *CW[W]) error {
	fields := [5]*int32{&rec.T, &rec.A, &rec.B, &rec.C, &rec.D}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("cw: read field: %w", err)
		}
	}
	if err := readWeight(r, &rec.V); err != nil {
		return fmt.Errorf("cw: read v: %w", err)
	}
	return nil
}

// writeWeight encodes v in its §6 on-disk width: int32 for the Integer
// precision, float64 for the Real (CWS) precision.
func writeWeight[W wtype.Weight](w io.Writer, v W) error {
	switch x := any(v).(type) {
	case int:
		return binary.Write(w, binary.LittleEndian, int32(x))
	case float64:
		return binary.Write(w, binary.LittleEndian, x)
	default:
		return fmt.Errorf("cw: unsupported weight type %T", v)
	}
}

// readWeight decodes a weight written by writeWeight.
func readWeight[W wtype.Weight](r io.Reader, v *W) error {
	switch p := any(v).(type) {
	case *int:
		var x int32
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return err
		}
		*p = int(x)
		return nil
	case *float64:
		return binary.Read(r, binary.LittleEndian, p)
	default:
		return fmt.Errorf("cw: unsupported weight type %T", v)
	}
}

// ReadSlice reads count CW records, buffering the reader for throughput —
// index files can hold millions of CWs (§6).
func ReadSlice[W wtype.Weight](r io.Reader, count int) ([]CW[W], error) {
	out := make([]CW[W], count)
	br := bufio.NewReaderSize(r, 1<<16)
	for i := range out {
		if err := ReadFrom(br, &out[i]); err != nil {
			return nil, fmt.Errorf("cw: record %d: %w", i, err)
		}
	}
	return out, nil
}

// WriteSlice writes a full CW table for one hash function: the record
// count (platform-native 64-bit per §6) followed by each record.
func WriteSlice[W wtype.Weight](w io.Writer, recs []CW[W]) error {
	count := uint64(len(recs))
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return fmt.Errorf("cw: write count: %w", err)
	}
	bw := bufio.NewWriterSize(w, 1<<16)
	for _, rec := range recs {
		if err := WriteTo(bw, rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}
