// Package diagnostics runs the optional post-build coverage check: for
// every document, hash function, and position pair (i,j) with i<=j, count
// how many CW rectangles in that hash function's table claim it. A pair
// claimed by zero rectangles is "uncovered"; a pair claimed by more than
// one is "multicover". Every builder partitions the pairs, so either kind
// is a misbuild signal.
//
// This is O(docs * k * n^2 * |cws|) and is meant for small corpora during
// development, not production index builds — it mirrors the original
// builder's own validation() pass, which carried the identical cost.
package diagnostics

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"ragalign/internal/cw"
	"ragalign/internal/wtype"
)

// Gap records one uncovered or multiply-covered position pair.
type Gap struct {
	DocID int
	Hid   int
	I, J  int
	Count int
}

// Report summarizes a validation pass as an incrementally-built JSON
// document, queryable afterward via gjson paths like "summary.uncovered"
// or "gaps.0.docID".
type Report struct {
	json string
}

// NewReport starts an empty report.
func NewReport() *Report {
	return &Report{json: "{}"}
}

// JSON returns the accumulated report document.
func (r *Report) JSON() string {
	return r.json
}

// Query evaluates a gjson path against the accumulated report, e.g.
// "summary.multicover" or "gaps.#(hid==2).i".
func (r *Report) Query(path string) gjson.Result {
	return gjson.Get(r.json, path)
}

func (r *Report) set(path string, value any) {
	out, err := sjson.Set(r.json, path, value)
	if err != nil {
		// set paths here are all literal/constant: a failure means a
		// caller is using Report outside its intended shape.
		panic(fmt.Sprintf("diagnostics: sjson.Set(%s): %v", path, err))
	}
	r.json = out
}

// Validate runs the coverage check described above over docs against a
// single hash function's CW table, appending any gaps it finds to report
// and returning them.
func Validate[W wtype.Weight](report *Report, hid int, docs [][]int, table []cw.CW[W]) []Gap {
	var gaps []Gap
	for docID, doc := range docs {
		n := len(doc)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				count := 0
				for _, rec := range table {
					if int(rec.T) != docID {
						continue
					}
					if int(rec.A) <= i && i <= int(rec.B) && int(rec.C) <= j && j <= int(rec.D) {
						count++
					}
				}
				if count != 1 {
					gaps = append(gaps, Gap{DocID: docID, Hid: hid, I: i, J: j, Count: count})
				}
			}
		}
	}

	uncovered, multicover := 0, 0
	for _, g := range gaps {
		if g.Count == 0 {
			uncovered++
		} else {
			multicover++
		}
		idx := report.Query("gaps.#").Int()
		base := fmt.Sprintf("gaps.%d.", idx)
		report.set(base+"docID", g.DocID)
		report.set(base+"hid", g.Hid)
		report.set(base+"i", g.I)
		report.set(base+"j", g.J)
		report.set(base+"count", g.Count)
	}

	report.set("summary.uncovered", report.Query("summary.uncovered").Int()+int64(uncovered))
	report.set("summary.multicover", report.Query("summary.multicover").Int()+int64(multicover))
	report.set("summary.checkedHashFuncs", report.Query("summary.checkedHashFuncs").Int()+1)
	return gaps
}

// ValidateAll runs Validate across every hash function in table, one
// report shared across all of them.
func ValidateAll[W wtype.Weight](docs [][]int, table [][]cw.CW[W]) *Report {
	report := NewReport()
	for hid, cws := range table {
		Validate(report, hid, docs, cws)
	}
	return report
}
