package rlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetupWithoutDirFallsBackToStderr(t *testing.T) {
	l := Setup("")
	if l.Stdout == nil || l.Access == nil || l.Error == nil || l.Debug == nil {
		t.Fatal("Setup should populate all four loggers even with no directory")
	}
}

func TestSetupWritesToDir(t *testing.T) {
	dir := t.TempDir()
	l := Setup(dir)
	l.Access.Print("hello")
	data, err := os.ReadFile(filepath.Join(dir, "access.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected access.log to contain the logged line")
	}
}

func TestTimerCheckIsMonotonicallyIncreasing(t *testing.T) {
	timer := Start()
	time.Sleep(2 * time.Millisecond)
	first := timer.Check()
	time.Sleep(2 * time.Millisecond)
	second := timer.Check()
	if second < first {
		t.Errorf("Check() should be non-decreasing: first=%v second=%v", first, second)
	}
}
