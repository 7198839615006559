// Package index reads and writes the on-disk sketch index: top-level
// (k, tokenNum), the hasher block, and k CW tables (§6).
package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"ragalign/internal/cw"
	"ragalign/internal/hasher"
	"ragalign/internal/wtype"
)

// Header is everything about an index short of its CW tables: the query
// CLI reads just this to learn k, tokenNum, and — via Hasher.Precision() —
// whether to load the rest as CW[int] or CW[float64], without paying for
// the (potentially enormous) table scan.
type Header struct {
	K        int
	TokenNum int
	Hasher   *hasher.State
}

// ReadHeader reads k, tokenNum, and the hasher block. k and tokenNum are
// written twice on disk — once here at the top level, once more inside the
// hasher block itself. That duplication is kept deliberately rather than
// collapsed: it is the on-disk layout this format was distilled from, and
// a header-only reader that only consumes the top-level copy still lines
// up byte-for-byte with a full loader that reads both.
func ReadHeader(r io.Reader) (*Header, error) {
	var k, tokenNum int32
	if err := binary.Read(r, binary.LittleEndian, &k); err != nil {
		return nil, fmt.Errorf("index: read k: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &tokenNum); err != nil {
		return nil, fmt.Errorf("index: read tokenNum: %w", err)
	}
	st, err := hasher.ReadState(r)
	if err != nil {
		return nil, fmt.Errorf("index: read hasher block: %w", err)
	}
	return &Header{K: int(k), TokenNum: int(tokenNum), Hasher: st}, nil
}

// PeekHeader opens path and reads just the header, for callers (the query
// CLI) that need to decide precision before committing to a generic
// instantiation of the full loader.
func PeekHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadHeader(bufio.NewReaderSize(f, 4096))
}

// Save writes a complete index file — header followed by k CW tables —
// to a temp file next to path and renames it into place atomically, so a
// concurrent reader never observes a partially written index. The temp
// name carries a random uuid suffix rather than a pid or timestamp so two
// concurrent builds of the same path can never collide.
func Save[W wtype.Weight](path string, k, tokenNum int, state *hasher.State, table [][]cw.CW[W]) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), uuid.NewString()))

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("index: create temp file: %w", err)
	}
	if err := writeIndex(f, k, tokenNum, state, table); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("index: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("index: rename into place: %w", err)
	}
	return nil
}

func writeIndex[W wtype.Weight](w io.Writer, k, tokenNum int, state *hasher.State, table [][]cw.CW[W]) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	if err := binary.Write(bw, binary.LittleEndian, int32(k)); err != nil {
		return fmt.Errorf("index: write k: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(tokenNum)); err != nil {
		return fmt.Errorf("index: write tokenNum: %w", err)
	}
	if err := hasher.WriteState(bw, state); err != nil {
		return fmt.Errorf("index: write hasher block: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("index: flush header: %w", err)
	}
	for hid := 0; hid < k; hid++ {
		if err := cw.WriteSlice(w, table[hid]); err != nil {
			return fmt.Errorf("index: write cw table %d: %w", hid, err)
		}
	}
	return nil
}

// Load reads a complete index file written by Save. Callers pick W by
// first calling PeekHeader and branching on Hasher.Precision().
func Load[W wtype.Weight](path string) (*Header, [][]cw.CW[W], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 1<<16)
	hdr, err := ReadHeader(br)
	if err != nil {
		return nil, nil, err
	}

	table := make([][]cw.CW[W], hdr.K)
	for hid := 0; hid < hdr.K; hid++ {
		var count uint64
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, nil, fmt.Errorf("index: read cw count %d: %w", hid, err)
		}
		recs, err := cw.ReadSlice[W](br, int(count))
		if err != nil {
			return nil, nil, fmt.Errorf("index: read cw table %d: %w", hid, err)
		}
		table[hid] = recs
	}
	return hdr, table, nil
}
