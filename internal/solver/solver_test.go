// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runInFunc     func(dir, name string, args []string, stdout io.Writer) error
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunIn(dir, name string, args []string, stdout io.Writer) error {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	if m.runInFunc != nil {
		return m.runInFunc(dir, name, args, stdout)
	}
	return nil
}

// fakeCCX writes the files ccx leaves next to a solved deck.
func fakeCCX(dir, _ string, args []string, _ io.Writer) error {
	job := args[len(args)-1]
	for _, ext := range []string{".frd", ".dat", ".cvg", ".sta"} {
		if err := os.WriteFile(filepath.Join(dir, job+ext), []byte(ext), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func TestDetectRunner(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name:     "local ccx preferred",
			exec:     &mockExecutor{availableBins: map[string]bool{"ccx": true, "docker": true}, runnableCmds: map[string]bool{"docker info": true}},
			wantName: "ccx",
		},
		{
			name:     "docker when ccx missing",
			exec:     &mockExecutor{availableBins: map[string]bool{"docker": true}, runnableCmds: map[string]bool{"docker info": true}},
			wantName: "docker",
		},
		{
			name:     "podman when docker info fails",
			exec:     &mockExecutor{availableBins: map[string]bool{"docker": true, "podman": true}, runnableCmds: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name:    "nothing available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := detectRunner(tt.exec, "")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no solver available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name())
		})
	}
}

func TestContainerRunnerArgs(t *testing.T) {
	exec := &mockExecutor{}
	r := &containerRunner{bin: "docker", image: "ccx:test", exec: exec}

	dir := t.TempDir()
	require.NoError(t, r.Run(dir, "beam", io.Discard))
	require.Len(t, exec.calls, 1)
	assert.Equal(t, "docker run --rm -v "+dir+":/work -w /work ccx:test ccx beam", exec.calls[0])
}

func setupDeck(t *testing.T, series, job string) (string, types.SolverConfig) {
	t.Helper()
	root := t.TempDir()
	deckDir := filepath.Join(root, "inp", series)
	require.NoError(t, os.MkdirAll(deckDir, 0o755))
	inp := filepath.Join(deckDir, job+".inp")
	require.NoError(t, os.WriteFile(inp, []byte("*HEADING\n"), 0o644))
	return inp, types.SolverConfig{FRDDir: filepath.Join(root, "frd"), DatDir: filepath.Join(root, "dat")}
}

func TestSolveDeck(t *testing.T) {
	inp, cfg := setupDeck(t, "C000001", "2025070218")
	r := &localRunner{exec: &mockExecutor{runInFunc: fakeCCX}}

	var out strings.Builder
	assert.Equal(t, StatusSolved, SolveDeck(r, inp, cfg, &out))
	assert.Contains(t, out.String(), "solved: C000001/2025070218")

	assert.FileExists(t, filepath.Join(cfg.FRDDir, "C000001", "2025070218.frd"))
	assert.FileExists(t, filepath.Join(cfg.DatDir, "C000001", "2025070218.dat"))
	for _, ext := range []string{".frd", ".dat", ".cvg", ".sta"} {
		assert.NoFileExists(t, filepath.Join(filepath.Dir(inp), "2025070218"+ext))
	}
	assert.FileExists(t, inp)

	out.Reset()
	assert.Equal(t, StatusSkipped, SolveDeck(r, inp, cfg, &out))
	assert.Contains(t, out.String(), "already solved")
}

func TestSolveDeckFailures(t *testing.T) {
	t.Run("runner error", func(t *testing.T) {
		inp, cfg := setupDeck(t, "C000001", "beam")
		r := &localRunner{exec: &mockExecutor{runInFunc: func(string, string, []string, io.Writer) error {
			return errors.New("exit status 201")
		}}}
		var out strings.Builder
		assert.Equal(t, StatusFailed, SolveDeck(r, inp, cfg, &out))
		assert.Contains(t, out.String(), "exit status 201")
	})

	t.Run("no frd produced", func(t *testing.T) {
		inp, cfg := setupDeck(t, "C000001", "beam")
		r := &localRunner{exec: &mockExecutor{}}
		var out strings.Builder
		assert.Equal(t, StatusFailed, SolveDeck(r, inp, cfg, &out))
	})
}

func TestSolveBatch(t *testing.T) {
	inp, cfg := setupDeck(t, "C000001", "a")
	other := filepath.Join(filepath.Dir(inp), "b.inp")
	require.NoError(t, os.WriteFile(other, []byte("*HEADING\n"), 0o644))

	decks, err := FindDecks(filepath.Dir(filepath.Dir(inp)))
	require.NoError(t, err)
	require.Len(t, decks, 2)

	r := &localRunner{exec: &mockExecutor{runInFunc: fakeCCX}}
	var out strings.Builder
	result := SolveBatch(r, decks, cfg, &out)
	assert.Equal(t, BatchResult{Solved: 2}, result)
	assert.False(t, result.HasFailures())
	assert.Contains(t, out.String(), "2 solved, 0 skipped, 0 failed (total: 2)")

	again := SolveBatch(r, decks, cfg, io.Discard)
	assert.Equal(t, 2, again.Skipped)
}
