// Package cliflags defines the flag surfaces shared by ragalign-build and
// ragalign-query (spec.md §6), each bound to a Cobra command via pflag so
// both binaries get consistent parsing, help text, and error reporting from
// one place.
package cliflags

import (
	"github.com/spf13/cobra"
)

// BuildOptions mirrors the "build" CLI reference surface in spec.md §6.
type BuildOptions struct {
	DocsFile      string // -f
	HashCount     int    // -k
	IndexFile     string // -i
	DocLimit      int    // -n, 0 means unlimited
	LenLimit      int    // -l, 0 means unlimited
	TFMode        string // -t
	Builder       string // -B
	Active        bool   // -a
	Strategy      string // -s
	Validate      bool   // -V
	IDFFile       string // -I
	Vocab         int    // -v
	Config        string // --config, optional TOML file of defaults
	ReportQuery   string // --report-query, gjson path into the -V report
	DebugDump     bool   // --debug-dump, supplemented feature
	Iterative     bool   // --iterative, AllAlign explicit-stack mode
	IDFFromCorpus bool   // --idf-from-corpus, derive IDF from the loaded docs instead of -I
}

// RegisterBuildFlags binds every build flag onto cmd and returns the struct
// Cobra will have populated once cmd.Execute() parses args. Flags left
// unset by the user keep the defaults registered here; callers start from
// sketchcfg defaults and overlay only the flags the user actually changed
// (cmd.Flags().Changed(name)).
func RegisterBuildFlags(cmd *cobra.Command) *BuildOptions {
	opt := &BuildOptions{}
	f := cmd.Flags()
	f.StringVarP(&opt.DocsFile, "docs", "f", "", "path to the tokenized document corpus")
	f.IntVarP(&opt.HashCount, "hash-count", "k", 64, "number of hash functions")
	f.StringVarP(&opt.IndexFile, "index", "i", "", "path to write the built index to")
	f.IntVarP(&opt.DocLimit, "doc-limit", "n", 0, "stop after this many documents (0 = unlimited)")
	f.IntVarP(&opt.LenLimit, "len-limit", "l", 0, "truncate documents to this many tokens (0 = unlimited)")
	f.StringVarP(&opt.TFMode, "tf-mode", "t", "raw", "term-frequency mode: raw|log|boolean|augmented|square")
	f.StringVarP(&opt.Builder, "builder", "B", "monotonic", "CW builder: monotonic|allalign|single")
	f.BoolVarP(&opt.Active, "active", "a", true, "monotonic builder: active-key optimization")
	f.StringVarP(&opt.Strategy, "strategy", "s", "binary", "monotonic builder search backend: binary|linear")
	f.BoolVarP(&opt.Validate, "validate", "V", false, "run post-build coverage validation")
	f.StringVarP(&opt.IDFFile, "idf", "I", "", "IDF text file (enables Real precision with IDF scaling)")
	f.IntVarP(&opt.Vocab, "vocab", "v", 50257, "vocabulary size (tokenNum)")
	f.StringVar(&opt.Config, "config", "", "optional TOML file of build defaults")
	f.StringVar(&opt.ReportQuery, "report-query", "", "gjson path to filter the validation report (requires -V)")
	f.BoolVar(&opt.DebugDump, "debug-dump", false, "dump every CW record to stdout after building")
	f.BoolVar(&opt.Iterative, "iterative", false, "AllAlign builder: use the explicit-stack construction")
	f.BoolVar(&opt.IDFFromCorpus, "idf-from-corpus", false, "derive IDF from the loaded documents instead of -I")
	return opt
}

// QueryOptions mirrors the "query" CLI reference surface in spec.md §6.
type QueryOptions struct {
	IndexFile       string  // -i
	QueryFile       string  // -f
	Threshold       float64 // -t
	Config          string  // --config
	SymmetricRanges bool    // --symmetric-ranges
}

// RegisterQueryFlags binds every query flag onto cmd.
func RegisterQueryFlags(cmd *cobra.Command) *QueryOptions {
	opt := &QueryOptions{}
	f := cmd.Flags()
	f.StringVarP(&opt.IndexFile, "index", "i", "", "path to a built index")
	f.StringVarP(&opt.QueryFile, "query", "f", "", "whitespace-separated decimal token ids")
	f.Float64VarP(&opt.Threshold, "threshold", "t", 0.8, "containment threshold in [0,1]")
	f.StringVar(&opt.Config, "config", "", "optional TOML file of query defaults")
	f.BoolVar(&opt.SymmetricRanges, "symmetric-ranges", false, "use the symmetric outer/inner range pairing")
	return opt
}
