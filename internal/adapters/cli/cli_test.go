package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/cli"
)

const catalogDocument = `
resources:
  - name: plate
  - name: gear
entities:
  - name: assembler
    crafting_speed: 1
    size: 3
processes:
  - name: make-plate
    time: 1
    products:
      - resource: plate
        amount: 1
    crafters: [assembler]
    enabled: true
  - name: make-gear
    time: 0.5
    ingredients:
      - resource: plate
        amount: 2
    products:
      - resource: gear
        amount: 1
    crafters: [assembler]
    enabled: true
technologies:
  - name: gears
    time: 10
    count: 5
    crafters: [assembler]
    ingredients:
      - resource: gear
        amount: 1
    prerequisites: [gears]
`

const pageDocument = `
name: gears
network:
  links:
    - resource: gear
      amount: 2
    - resource: plate
  instances:
    - recipe: make-gear
      entity: assembler
    - recipe: make-plate
      entity: assembler
`

type cliEnv struct {
	dir string
	db  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("YAFC_LOGGING_LEVEL", "error")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte(catalogDocument), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.yaml"), []byte(pageDocument), 0o644))
	return &cliEnv{dir: dir, db: filepath.Join(dir, "yafc.db")}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", e.db}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *cliEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func TestCLI_ImportAnalyseAndSolve(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)
	_, err := env.run(t, "catalog", "import", env.path("catalog.yaml"))
	require.NoError(t, err)
	_, err = env.run(t, "page", "import", env.path("page.yaml"))
	require.NoError(t, err)

	// Act
	analysis, analyzeErr := env.run(t, "analyze")
	loops, loopsErr := env.run(t, "loops")
	solved, solveErr := env.run(t, "solve", "gears")
	runs, runsErr := env.run(t, "runs", "gears", "-o", "json")

	// Assert
	require.NoError(t, analyzeErr)
	assert.Contains(t, analysis, "Analysis of 6 objects")

	require.NoError(t, loopsErr)
	assert.Contains(t, loops, "Loop 1: gears")

	require.NoError(t, solveErr)
	assert.Contains(t, solved, "[✓] make-gear 2/s in 1× assembler")
	assert.Contains(t, solved, "[✓] make-plate 4/s in 4× assembler")
	assert.Contains(t, solved, "Status:    OPTIMAL")

	require.NoError(t, runsErr)
	var decoded struct {
		PageName string
		Runs     []struct{ Status string }
	}
	require.NoError(t, json.Unmarshal([]byte(runs), &decoded))
	assert.Equal(t, "gears", decoded.PageName)
	require.Len(t, decoded.Runs, 1)
	assert.Equal(t, "COMPLETED", decoded.Runs[0].Status)
}

func TestCLI_DefaultPageIsUsedWhenNoneNamed(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)
	_, err := env.run(t, "catalog", "import", env.path("catalog.yaml"))
	require.NoError(t, err)
	_, err = env.run(t, "page", "import", env.path("page.yaml"))
	require.NoError(t, err)

	// Act
	_, noDefaultErr := env.run(t, "solve")
	_, useErr := env.run(t, "page", "use", "gears")
	_, solveErr := env.run(t, "solve")

	// Assert
	assert.ErrorContains(t, noDefaultErr, "no page specified")
	require.NoError(t, useErr)
	assert.NoError(t, solveErr)
}

func TestCLI_PageExportRoundTrips(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)
	_, err := env.run(t, "catalog", "import", env.path("catalog.yaml"))
	require.NoError(t, err)
	_, err = env.run(t, "page", "import", env.path("page.yaml"))
	require.NoError(t, err)

	// Act
	_, exportErr := env.run(t, "page", "export", "gears", env.path("exported.yaml"))
	_, conflictErr := env.run(t, "page", "import", env.path("exported.yaml"))
	replaced, replaceErr := env.run(t, "page", "import", env.path("exported.yaml"), "--replace")
	listed, listErr := env.run(t, "page", "list")

	// Assert
	require.NoError(t, exportErr)
	assert.ErrorContains(t, conflictErr, "already exists")
	require.NoError(t, replaceErr)
	assert.Contains(t, replaced, "Page gears replaced (2 instances, 2 links)")
	require.NoError(t, listErr)
	assert.Contains(t, listed, "gears")
}

func TestCLI_CostOfUnknownObjectFails(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "catalog", "import", env.path("catalog.yaml"))
	require.NoError(t, err)

	_, err = env.run(t, "cost", "copper")

	assert.ErrorContains(t, err, "unknown catalog object: copper")
}

func TestCLI_CostReportsInfinityAsText(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)
	_, err := env.run(t, "catalog", "import", env.path("catalog.yaml"))
	require.NoError(t, err)

	// Act
	out, err := env.run(t, "cost", "gear", "-o", "json")

	// Assert
	require.NoError(t, err)
	var dto map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	assert.Equal(t, "gear", dto["Name"])
	assert.Equal(t, "RESOURCE", dto["Kind"])
}

func TestCLI_RejectsUnknownOutputFormat(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "loops", "-o", "xml")

	assert.ErrorContains(t, err, "unsupported output format")
}
