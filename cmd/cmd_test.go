package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "input.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
Title: Test Case
Variables: [pressure]
Mesh:
  Dimension: 1
  NX: 6
Ranks: 2
Limiter: minmod
Initial:
  pressure:
    Type: linear
    Value: 2
    Gradient: [-1, 0, 0]
`), 0o644))
	{ // Test each command runs on the example input
		for _, args := range [][]string{
			{"run", "-I", file},
			{"run", "-I", file, "--ranks", "3", "--threads", "2"},
			{"commlists", "-I", file},
			{"check", "-I", file, "--tolerance", "1.e-4"},
		} {
			rootCmd.SetArgs(args)
			assert.NoError(t, rootCmd.Execute(), args)
		}
	}
	{ // Test input errors are reported
		_, err := readInput("")
		assert.Error(t, err)
		_, err = readInput(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
		rootCmd.SetArgs([]string{"run", "-I", file, "--profile", "gpu"})
		assert.Error(t, rootCmd.Execute())
	}
}
