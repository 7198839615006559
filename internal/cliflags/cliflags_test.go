package cliflags

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterBuildFlagsDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	opt := RegisterBuildFlags(cmd)
	if opt.HashCount != 64 || opt.TFMode != "raw" || opt.Builder != "monotonic" || opt.Strategy != "binary" || opt.Vocab != 50257 {
		t.Fatalf("unexpected defaults: %+v", opt)
	}
	if !opt.Active {
		t.Error("expected active to default true")
	}
}

func TestRegisterBuildFlagsParsesArgs(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	opt := RegisterBuildFlags(cmd)
	cmd.SetArgs([]string{"-f", "docs.bin", "-k", "32", "-i", "out.idx", "--builder", "allalign"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if opt.DocsFile != "docs.bin" || opt.HashCount != 32 || opt.IndexFile != "out.idx" || opt.Builder != "allalign" {
		t.Fatalf("flags not parsed correctly: %+v", opt)
	}
	if !cmd.Flags().Changed("hash-count") {
		t.Error("hash-count should be marked Changed")
	}
	if cmd.Flags().Changed("tf-mode") {
		t.Error("tf-mode should not be marked Changed when not passed")
	}
}

func TestRegisterQueryFlagsDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	opt := RegisterQueryFlags(cmd)
	if opt.Threshold != 0.8 || opt.SymmetricRanges {
		t.Fatalf("unexpected defaults: %+v", opt)
	}
}
