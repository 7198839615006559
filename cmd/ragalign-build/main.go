// Command ragalign-build constructs a Compressed Window sketch index from a
// tokenized document corpus (spec.md §6).
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"ragalign/internal/builder"
	"ragalign/internal/cliflags"
	"ragalign/internal/diagnostics"
	"ragalign/internal/docio"
	"ragalign/internal/hasher"
	"ragalign/internal/idfio"
	"ragalign/internal/index"
	"ragalign/internal/rlog"
	"ragalign/internal/sketchcfg"
	"ragalign/internal/tf"
)

func main() {
	root := &cobra.Command{
		Use:   "ragalign-build",
		Short: "Build a Compressed Window sketch index from a tokenized corpus",
	}
	opt := cliflags.RegisterBuildFlags(root)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, opt)
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ragalign-build:", err)
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, opt *cliflags.BuildOptions) error {
	logs := rlog.Setup("")
	timer := rlog.Start()

	cfg, err := sketchcfg.LoadBuildDefaults(opt.Config)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if changed("hash-count") {
		cfg.HashCount = opt.HashCount
	}
	if changed("tf-mode") {
		cfg.TFMode = opt.TFMode
	}
	if changed("builder") {
		cfg.Builder = opt.Builder
	}
	if changed("active") {
		cfg.Active = opt.Active
	}
	if changed("strategy") {
		cfg.Strategy = opt.Strategy
	}
	if changed("vocab") {
		cfg.Vocab = opt.Vocab
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if opt.DocsFile == "" {
		return fmt.Errorf("missing required flag: -f/--docs")
	}
	if opt.IndexFile == "" {
		return fmt.Errorf("missing required flag: -i/--index")
	}

	mode, err := tf.ParseMode(cfg.TFMode)
	if err != nil {
		return err
	}
	var strategy builder.SearchStrategy
	switch cfg.Strategy {
	case "binary":
		strategy = builder.BinarySearch
	case "linear":
		strategy = builder.LinearScan
	default:
		return fmt.Errorf("unknown search strategy %q", cfg.Strategy)
	}
	switch cfg.Builder {
	case "monotonic", "allalign", "single":
	default:
		return fmt.Errorf("unknown builder %q", cfg.Builder)
	}

	var docs [][]int
	if opt.DocLimit > 0 {
		docs, err = docio.ReadRange(opt.DocsFile, 0, opt.DocLimit)
	} else {
		var f *os.File
		f, err = os.Open(opt.DocsFile)
		if err == nil {
			defer f.Close()
			docs, err = docio.ReadDocs(f)
		}
	}
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	if opt.LenLimit > 0 {
		for i, doc := range docs {
			if len(doc) > opt.LenLimit {
				docs[i] = doc[:opt.LenLimit]
			}
		}
	}
	logs.Access.Printf("loaded %d documents in %.3fs", len(docs), timer.Check())

	if opt.IDFFile != "" && opt.IDFFromCorpus {
		return fmt.Errorf("-I/--idf and --idf-from-corpus are mutually exclusive")
	}
	useIDF := opt.IDFFile != "" || opt.IDFFromCorpus
	var idfVec []float64
	switch {
	case opt.IDFFromCorpus:
		idfVec = idfio.CalculateCorpus(docs, cfg.Vocab)
		logs.Access.Printf("derived IDF from corpus (%d documents)", len(docs))
	case opt.IDFFile != "":
		sparse, warnings, err := idfio.ParseFile(opt.IDFFile)
		if err != nil {
			return fmt.Errorf("loading IDF file: %w", err)
		}
		for _, w := range warnings {
			logs.Error.Printf("idf file: %s", w)
		}
		idfVec = idfio.Densify(sparse, cfg.Vocab)
	}

	seed := rand.Uint64()
	precision := hasher.Integer
	if mode.RequiresReal() || useIDF {
		precision = hasher.Real
	}

	var (
		hstate  *hasher.State
		saveErr error
	)
	if precision == hasher.Integer {
		h := hasher.NewIntHasher(cfg.HashCount, cfg.Vocab, seed)
		calcTF := func(freq, maxFreq int) int {
			v, err := tf.WeightInt(mode, freq)
			if err != nil {
				panic(err)
			}
			return v
		}
		r := buildInt(cfg, strategy, opt, h, calcTF, docs)
		hstate = h.State()
		if opt.Validate {
			report := diagnostics.ValidateAll(docs, r.Table)
			printReport(report, opt.ReportQuery)
		}
		if opt.DebugDump {
			r.DebugDump(os.Stdout)
		}
		saveErr = index.Save(opt.IndexFile, cfg.HashCount, cfg.Vocab, hstate, r.Table)
		logs.Access.Printf("%s", h.Info())
		logs.Access.Printf("built %d CWs in %.3fs", r.Size(), timer.Check())
	} else {
		h, err := hasher.NewRealHasher(cfg.HashCount, cfg.Vocab, seed, mode, useIDF, idfVec, cfg.DrawCacheLRU)
		if err != nil {
			return err
		}
		calcTF := func(freq, maxFreq int) float64 {
			return tf.WeightReal(mode, freq, maxFreq)
		}
		r := buildReal(cfg, strategy, opt, h, calcTF, docs)
		hstate = h.State()
		if opt.Validate {
			report := diagnostics.ValidateAll(docs, r.Table)
			printReport(report, opt.ReportQuery)
		}
		if opt.DebugDump {
			r.DebugDump(os.Stdout)
		}
		saveErr = index.Save(opt.IndexFile, cfg.HashCount, cfg.Vocab, hstate, r.Table)
		logs.Access.Printf("%s", h.Info())
		logs.Access.Printf("built %d CWs in %.3fs", r.Size(), timer.Check())
	}
	if saveErr != nil {
		return fmt.Errorf("saving index: %w", saveErr)
	}
	return nil
}

func buildInt(cfg sketchcfg.BuildDefaults, strategy builder.SearchStrategy, opt *cliflags.BuildOptions, h *hasher.IntHasher, calcTF func(int, int) int, docs [][]int) *builder.Result[int] {
	switch cfg.Builder {
	case "allalign":
		b := builder.NewAllAlignBuilder[int](cfg.HashCount, cfg.Vocab, h, calcTF)
		if opt.Iterative {
			return b.BuildIterative(docs)
		}
		return b.Build(docs)
	case "single":
		return builder.NewSingleColumnBuilder[int](cfg.HashCount, cfg.Vocab, h, calcTF).Build(docs)
	default:
		return builder.NewMonotonicBuilder[int](cfg.HashCount, cfg.Vocab, h, calcTF, cfg.Active, strategy).Build(docs)
	}
}

func buildReal(cfg sketchcfg.BuildDefaults, strategy builder.SearchStrategy, opt *cliflags.BuildOptions, h *hasher.RealHasher, calcTF func(int, int) float64, docs [][]int) *builder.Result[float64] {
	switch cfg.Builder {
	case "allalign":
		b := builder.NewAllAlignBuilder[float64](cfg.HashCount, cfg.Vocab, h, calcTF)
		if opt.Iterative {
			return b.BuildIterative(docs)
		}
		return b.Build(docs)
	case "single":
		return builder.NewSingleColumnBuilder[float64](cfg.HashCount, cfg.Vocab, h, calcTF).Build(docs)
	default:
		return builder.NewMonotonicBuilder[float64](cfg.HashCount, cfg.Vocab, h, calcTF, cfg.Active, strategy).Build(docs)
	}
}

func printReport(report *diagnostics.Report, query string) {
	if query != "" {
		fmt.Println(report.Query(query).String())
		return
	}
	fmt.Printf("uncovered=%d multicover=%d\n",
		report.Query("summary.uncovered").Int(), report.Query("summary.multicover").Int())
}
