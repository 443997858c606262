package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}

	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}

	if info.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}

	expectedPlatform := runtime.GOOS + "/" + runtime.GOARCH
	if info.Platform != expectedPlatform {
		t.Errorf("Platform = %s, want %s", info.Platform, expectedPlatform)
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "v1.2.3", Commit: "abc123", BuildTime: "now", GoVersion: "go1.25", Platform: "linux/amd64"}
	output := info.String()

	for _, want := range []string{"forkjoin", "v1.2.3", "abc123", "go1.25", "linux/amd64"} {
		if !strings.Contains(output, want) {
			t.Errorf("String output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestRows(t *testing.T) {
	info := Get()

	if got := info.Headers(); len(got) != 2 {
		t.Fatalf("expected 2 headers, got %v", got)
	}

	rows := info.Rows()
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if len(row) != 2 {
			t.Errorf("row %v should have 2 columns", row)
		}
	}
	if rows[0][1] != info.Version {
		t.Errorf("first row should hold the version, got %v", rows[0])
	}
}
