// Command ragalign-query answers an approximate containment query against
// a built Compressed Window sketch index (spec.md §6).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ragalign/internal/cliflags"
	"ragalign/internal/hasher"
	"ragalign/internal/index"
	"ragalign/internal/query"
	"ragalign/internal/rlog"
	"ragalign/internal/sketchcfg"
	"ragalign/internal/tf"
)

func main() {
	root := &cobra.Command{
		Use:   "ragalign-query",
		Short: "Answer a containment query against a Compressed Window sketch index",
	}
	opt := cliflags.RegisterQueryFlags(root)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, opt)
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ragalign-query:", err)
		os.Exit(1)
	}
}

func runQuery(cmd *cobra.Command, opt *cliflags.QueryOptions) error {
	logs := rlog.Setup("")
	timer := rlog.Start()

	cfg, err := sketchcfg.LoadQueryDefaults(opt.Config)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if changed("threshold") {
		cfg.Threshold = opt.Threshold
	}
	if changed("symmetric-ranges") {
		cfg.SymmetricRanges = opt.SymmetricRanges
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if opt.IndexFile == "" {
		return fmt.Errorf("missing required flag: -i/--index")
	}
	if opt.QueryFile == "" {
		return fmt.Errorf("missing required flag: -f/--query")
	}

	queryTokens, err := readQueryTokens(opt.QueryFile)
	if err != nil {
		return err
	}
	if len(queryTokens) == 0 {
		return fmt.Errorf("query file %s is empty", opt.QueryFile)
	}

	hdr, err := index.PeekHeader(opt.IndexFile)
	if err != nil {
		return fmt.Errorf("reading index header: %w", err)
	}
	logs.Access.Printf("loaded header (k=%d, tokenNum=%d) in %.3fs", hdr.K, hdr.TokenNum, timer.Check())

	var matches []query.Match
	if hdr.Hasher.Precision() == hasher.Integer {
		_, table, err := index.Load[int](opt.IndexFile)
		if err != nil {
			return fmt.Errorf("loading index: %w", err)
		}
		h := hasher.NewIntHasherFromState(hdr.Hasher)
		calcTF := func(freq, maxFreq int) int {
			v, err := tf.WeightInt(hdr.Hasher.TFMode, freq)
			if err != nil {
				panic(err)
			}
			return v
		}
		eng := &query.Engine[int]{K: hdr.K, Table: table, Hasher: h, CalcTF: calcTF, Symmetric: cfg.SymmetricRanges}
		matches = eng.Query(queryTokens, cfg.Threshold)
		logs.Access.Printf("%s", h.Info())
	} else {
		_, table, err := index.Load[float64](opt.IndexFile)
		if err != nil {
			return fmt.Errorf("loading index: %w", err)
		}
		h, err := hasher.NewRealHasherFromState(hdr.Hasher, cfg.DrawCacheLRU)
		if err != nil {
			return err
		}
		calcTF := func(freq, maxFreq int) float64 {
			return tf.WeightReal(hdr.Hasher.TFMode, freq, maxFreq)
		}
		eng := &query.Engine[float64]{K: hdr.K, Table: table, Hasher: h, CalcTF: calcTF, Symmetric: cfg.SymmetricRanges}
		matches = eng.Query(queryTokens, cfg.Threshold)
		logs.Access.Printf("%s", h.Info())
	}

	logs.Access.Printf("found %d matches in %.3fs", len(matches), timer.Check())
	for _, m := range matches {
		if cfg.SymmetricRanges {
			fmt.Printf("doc=%d outer=[%d,%d] inner=[%d,%d]\n", m.DocID, m.L, m.R, m.InnerLo, m.InnerHi)
		} else {
			fmt.Printf("doc=%d range=[%d,%d]\n", m.DocID, m.L, m.R)
		}
	}
	return nil
}

func readQueryTokens(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Split(bufio.ScanWords)
	var tokens []int
	for sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("parsing query token %q: %w", sc.Text(), err)
		}
		tokens = append(tokens, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}
