package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/repsel/xyz"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "repsel", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"select", "filter", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
	for _, flag := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "repsel "+Version)
}

func TestSelectCommand_RequiresFolders(t *testing.T) {
	_, err := run(t, "select")
	assert.Error(t, err)
}

func writeH2(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		s := &xyz.Structure{
			Symbols: []string{"H", "H"},
			Coords:  [][3]float64{{0, 0, 0}, {0.6 + 0.05*float64(i), 0, 0}},
		}
		require.NoError(t, xyz.WriteFile(filepath.Join(dir, fmt.Sprintf("h%02d.xyz", i)), s))
	}
}

func TestSelectCommand_FixedK(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "sel")
	writeH2(t, in, 8)
	cfg := filepath.Join(t.TempDir(), "repsel.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("descriptor:\n  truncate: false\n"), 0o644))

	stdout, err := run(t, "--config", cfg, "--log-level", "error",
		"select", "-i", in, "-o", out, "--fixed-k", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Selected 3 of 8 structures")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSelectCommand_BadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "repsel.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("budget:\n  cap_policy: nope\n"), 0o644))

	_, err := run(t, "--config", cfg, "select", "-i", t.TempDir(), "-o", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cap_policy")
}

func TestFilterCommand(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "ok")
	writeH2(t, in, 2)

	stdout, err := run(t, "--log-level", "error", "filter", "-i", in, "-o", out, "--threshold", "1.3")
	require.NoError(t, err)
	// 0.60 and 0.65 are both below 1.3 * 2 * 0.31.
	assert.Contains(t, stdout, "2 of 2 structures passed")
}
