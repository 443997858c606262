package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aryankumar/forkjoin/internal/util"
	"github.com/spf13/pflag"
)

func TestManager_Load(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantErr       bool
		wantThreads   int
		wantGrain     int64
		wantFormat    string
	}{
		{
			name: "full config",
			configContent: `
threads:
  num: 6
defaults:
  grainSize: 1024
  elements: 4096
  outputFormat: json
`,
			wantThreads: 6,
			wantGrain:   1024,
			wantFormat:  "json",
		},
		{
			name: "minimal config with defaults",
			configContent: `
threads:
  num: 2
`,
			wantThreads: 2,
			wantGrain:   DefaultGrainSize,
			wantFormat:  DefaultOutputFormat,
		},
		{
			name:          "empty config",
			configContent: "",
			wantThreads:   0,
			wantGrain:     DefaultGrainSize,
			wantFormat:    DefaultOutputFormat,
		},
		{
			name: "negative threads",
			configContent: `
threads:
  num: -1
`,
			wantErr: true,
		},
		{
			name: "unknown output format",
			configContent: `
defaults:
  outputFormat: xml
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, ".forkjoin.yaml")

			if tt.configContent != "" {
				if err := os.WriteFile(configPath, []byte(tt.configContent), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
			}

			manager := NewManager(configPath)
			cfg, err := manager.Load()

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, util.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cfg.Threads.Num != tt.wantThreads {
				t.Errorf("got threads %d, want %d", cfg.Threads.Num, tt.wantThreads)
			}
			if cfg.Defaults.GrainSize != tt.wantGrain {
				t.Errorf("got grain %d, want %d", cfg.Defaults.GrainSize, tt.wantGrain)
			}
			if cfg.Defaults.OutputFormat != tt.wantFormat {
				t.Errorf("got format %q, want %q", cfg.Defaults.OutputFormat, tt.wantFormat)
			}
			if manager.GetConfig() != cfg {
				t.Error("GetConfig should return the loaded config")
			}
		})
	}
}

func TestManager_Load_EnvOverride(t *testing.T) {
	t.Setenv("FORKJOIN_THREADS_NUM", "3")
	t.Setenv("FORKJOIN_DEFAULTS_GRAINSIZE", "77")

	manager := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Threads.Num != 3 {
		t.Errorf("got threads %d, want 3", cfg.Threads.Num)
	}
	if cfg.Defaults.GrainSize != 77 {
		t.Errorf("got grain %d, want 77", cfg.Defaults.GrainSize)
	}
	if manager.NumThreads() != 3 {
		t.Errorf("NumThreads() = %d, want 3", manager.NumThreads())
	}
}

func TestManager_SaveAndReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	manager := NewManager(configPath)
	if _, err := manager.Load(); err != nil {
		t.Fatalf("failed to load empty config: %v", err)
	}

	if err := manager.SetNumThreads(5); err != nil {
		t.Fatalf("SetNumThreads failed: %v", err)
	}
	if err := manager.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewManager(configPath)
	cfg, err := reloaded.Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if cfg.Threads.Num != 5 {
		t.Errorf("got threads %d after reload, want 5", cfg.Threads.Num)
	}
	if reloaded.ConfigFileUsed() != configPath {
		t.Errorf("ConfigFileUsed() = %q, want %q", reloaded.ConfigFileUsed(), configPath)
	}
}

func TestManager_SetNumThreads_Negative(t *testing.T) {
	manager := NewManager("")
	err := manager.SetNumThreads(-2)
	if err == nil {
		t.Fatal("expected error for negative thread count")
	}
	if !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestResolveNumThreads(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		forkjoin   string
		omp        string
		want       int
	}{
		{
			name:       "configured wins",
			configured: 3,
			forkjoin:   "8",
			omp:        "16",
			want:       3,
		},
		{
			name:     "forkjoin env before omp",
			forkjoin: "8",
			omp:      "16",
			want:     8,
		},
		{
			name: "omp env",
			omp:  "16",
			want: 16,
		},
		{
			name:     "garbage falls back to GOMAXPROCS",
			forkjoin: "lots",
			want:     runtime.GOMAXPROCS(0),
		},
		{
			name: "nothing set",
			want: runtime.GOMAXPROCS(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvNumThreads, tt.forkjoin)
			t.Setenv(EnvOMPNumThreads, tt.omp)

			if got := ResolveNumThreads(tt.configured); got != tt.want {
				t.Errorf("ResolveNumThreads(%d) = %d, want %d", tt.configured, got, tt.want)
			}
		})
	}
}

func TestManager_BindPFlag(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("threads:\n  num: 2\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("threads", 0, "")
	flags.String("output", "", "")

	manager := NewManager(configPath)
	if err := manager.BindPFlag("threads.num", flags.Lookup("threads")); err != nil {
		t.Fatalf("BindPFlag failed: %v", err)
	}
	if err := manager.BindPFlag("defaults.outputFormat", flags.Lookup("output")); err != nil {
		t.Fatalf("BindPFlag failed: %v", err)
	}
	if err := flags.Parse([]string{"--threads", "9"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Threads.Num != 9 {
		t.Errorf("set flag should override the file: got %d, want 9", cfg.Threads.Num)
	}
	if cfg.Defaults.OutputFormat != DefaultOutputFormat {
		t.Errorf("unset flag should not override the default: got %q", cfg.Defaults.OutputFormat)
	}

	if err := manager.BindPFlag("defaults.noColor", nil); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a missing flag, got %v", err)
	}
}

func TestLookupEnvThreads(t *testing.T) {
	t.Setenv(EnvNumThreads, "")
	t.Setenv(EnvOMPNumThreads, "12")

	forkjoin, omp := LookupEnvThreads()
	if forkjoin != "" {
		t.Errorf("expected empty %s, got %q", EnvNumThreads, forkjoin)
	}
	if omp != "12" {
		t.Errorf("expected %s=12, got %q", EnvOMPNumThreads, omp)
	}
}
