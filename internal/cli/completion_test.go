package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompletionCommand(t *testing.T) {
	scripts := map[string]string{
		"bash":       "bash completion",
		"zsh":        "#compdef forkjoin",
		"fish":       "fish completion",
		"powershell": "Register-ArgumentCompleter",
	}

	for shell, marker := range scripts {
		t.Run(shell, func(t *testing.T) {
			out, err := runCLI(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, marker) {
				t.Errorf("%s script missing %q", shell, marker)
			}
			// every script must complete the subcommands this binary has
			if !strings.Contains(out, "forkjoin") {
				t.Errorf("%s script does not mention forkjoin", shell)
			}
		})
	}
}

func TestCompletionCommand_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"completion", "tcsh"}, "invalid argument"},
		{[]string{"completion"}, "accepts 1 arg"},
		{[]string{"completion", "bash", "zsh"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCompletionCommand_Help(t *testing.T) {
	cmd := newCompletionCmd()
	cmd.SetArgs([]string{"--help"})

	out := &bytes.Buffer{}
	cmd.SetOut(out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Bash:", "Zsh:", "Fish:", "PowerShell:", "forkjoin completion"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestCompletionCommand_FlagValues(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"__complete", "bench", "--kind", ""}, []string{"for", "reduce"}},
		{[]string{"__complete", "info", "-o", ""}, []string{"table", "json", "yaml"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want+"\n") {
					t.Errorf("completions %q missing %q", out, want)
				}
			}
		})
	}
}
