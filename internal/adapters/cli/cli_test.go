package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
patterns:
  - id: oak_planks
    processing_time: 20
    inputs:
      - candidates: [item:oak_log]
        amount: 1
    outputs:
      - key: item:oak_planks
        amount: 4
  - id: stick
    inputs:
      - candidates: [item:oak_planks]
        amount: 2
    outputs:
      - key: item:stick
        amount: 4
`

const testStock = `
stock:
  - {key: "item:oak_log", amount: 1}
`

// writeTestConfig lays out a catalog, a stock file and a config pointing at
// them, and returns the config path
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	stockPath := filepath.Join(dir, "stock.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(stockPath, []byte(testStock), 0o644))

	cfg := fmt.Sprintf(`
catalog:
  source: file
  path: %s
storage:
  backend: memory
  seed_path: %s
database:
  type: sqlite
  path: %s
logging:
  level: info
  format: text
  output: file
  file_path: %s
`, catalogPath, stockPath, filepath.Join(dir, "craftplan.db"), filepath.Join(dir, "craftplan.log"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlanCommand_RendersTree(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "plan", "item:stick", "--amount", "4", "--config", cfg, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "Outcome:   SATISFIED")
	assert.Contains(t, out, "item:stick ×4 [CRAFT]")
	assert.Contains(t, out, "⚙ stick ×1")
	assert.Contains(t, out, "item:oak_log ×1 [STOCK]")
}

func TestPlanCommand_SuggestsNearKeys(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "plan", "item:stik", "--config", cfg, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "Outcome:   PARTIAL")
	assert.Contains(t, out, "Did you mean: item:stick?")
}

func TestPlanCommand_JSONFormat(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "plan", "item:oak_planks", "-n", "8", "--format", "json", "--config", cfg)

	require.NoError(t, err)
	assert.Contains(t, out, `"plan_id"`)
	assert.Contains(t, out, `"outcome": "PARTIAL"`)
	assert.Contains(t, out, `"item:oak_log": 1`)
}

func TestPlanCommand_RejectsBadInput(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCommand(t, "plan", "stick", "--config", cfg)
	assert.Error(t, err)

	_, err = runCommand(t, "plan", "item:stick", "--mode", "craft", "--config", cfg)
	assert.Error(t, err)

	_, err = runCommand(t, "plan", "item:stick", "--format", "xml", "--config", cfg)
	assert.Error(t, err)
}

func TestPlansCommands_ListShowAndArchive(t *testing.T) {
	cfg := writeTestConfig(t)
	_, err := runCommand(t, "plan", "item:stick", "--config", cfg)
	require.NoError(t, err)

	out, err := runCommand(t, "plans", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "1 × item:stick")
	assert.Contains(t, out, "SATISFIED")

	archive := filepath.Join(t.TempDir(), "plans.zst")
	out, err = runCommand(t, "plans", "export", archive, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 plans")

	out, err = runCommand(t, "plans", "inspect", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "craftplan-plans v1")
	assert.Contains(t, out, "1 × item:stick")
}

func TestCatalogCommands(t *testing.T) {
	cfg := writeTestConfig(t)
	catalogPath := filepath.Join(filepath.Dir(cfg), "catalog.yaml")

	out, err := runCommand(t, "catalog", "validate", catalogPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 patterns")

	out, err = runCommand(t, "catalog", "import", catalogPath, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 patterns (2 in catalog)")

	out, err = runCommand(t, "catalog", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "1×item:oak_log")
	assert.Contains(t, out, "4×item:stick")
}

func TestStorageCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "storage", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "item:oak_log")

	out, err = runCommand(t, "storage", "extract", "item:oak_log", "5", "--simulate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Would extract 1 of 5 item:oak_log")
	assert.Contains(t, out, "4 could not be moved")

	_, err = runCommand(t, "storage", "history", "--config", cfg)
	assert.Error(t, err)
}

func TestConfigShow_MasksPassword(t *testing.T) {
	assert.Equal(t, "postgres://craft:xxxxx@db:5432/plans", maskPassword("postgres://craft:secret@db:5432/plans"))
	assert.Equal(t, "", maskPassword(""))

	cfg := writeTestConfig(t)
	out, err := runCommand(t, "config", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "slot_policy: first-available")
}
