// Package docio reads and writes the tokenized document corpus format the
// builders and query engine consume: a flat stream of
// [int32 length][length x int32 token] records (§6).
package docio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WriteDocs writes every document as a length-prefixed int32 record.
func WriteDocs(w io.Writer, docs [][]int) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	for _, doc := range docs {
		if err := binary.Write(bw, binary.LittleEndian, int32(len(doc))); err != nil {
			return fmt.Errorf("docio: write length: %w", err)
		}
		for _, tok := range doc {
			if err := binary.Write(bw, binary.LittleEndian, int32(tok)); err != nil {
				return fmt.Errorf("docio: write token: %w", err)
			}
		}
	}
	return bw.Flush()
}

// ReadDocs reads every document from the stream.
func ReadDocs(r io.Reader) ([][]int, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	var docs [][]int
	for {
		var size int32
		if err := binary.Read(br, binary.LittleEndian, &size); err != nil {
			if err == io.EOF {
				return docs, nil
			}
			return nil, fmt.Errorf("docio: read length: %w", err)
		}
		doc := make([]int, size)
		for i := range doc {
			var tok int32
			if err := binary.Read(br, binary.LittleEndian, &tok); err != nil {
				return nil, fmt.Errorf("docio: read token: %w", err)
			}
			doc[i] = int(tok)
		}
		docs = append(docs, doc)
	}
}

// ReadRange reads count documents starting at the start'th record in the
// file at path. Skipped documents' token bytes are read and discarded
// without being decoded — grounded on the original loadSamples, which
// exists for spot-checking a huge corpus without loading it whole.
func ReadRange(path string, start, count int) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("docio: open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 1<<16)
	docs := make([][]int, 0, count)
	cur := 0
	for len(docs) < count {
		var size int32
		if err := binary.Read(br, binary.LittleEndian, &size); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("docio: read length: %w", err)
		}
		if cur < start {
			if _, err := io.CopyN(io.Discard, br, int64(size)*4); err != nil {
				return nil, fmt.Errorf("docio: skip document: %w", err)
			}
			cur++
			continue
		}
		doc := make([]int, size)
		for i := range doc {
			var tok int32
			if err := binary.Read(br, binary.LittleEndian, &tok); err != nil {
				return nil, fmt.Errorf("docio: read token: %w", err)
			}
			doc[i] = int(tok)
		}
		docs = append(docs, doc)
		cur++
	}
	return docs, nil
}
