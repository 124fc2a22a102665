package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Weigh/internal/report"
)

const purchaseYAML = `name: Purchase
criteria:
  - id: 1
    name: Price
  - id: 2
    name: Quality
  - id: 3
    name: Durability
best: 1
worst: 3
best_to_others:
  2: 2
  3: 3
others_to_worst:
  1: 3
  2: 2
`

const pairJSON = `{
	"criteria": [{"id": 1, "name": "Speed"}, {"id": 2, "name": "Cost"}],
	"best": 1,
	"worst": 2,
	"best_to_others": {"2": 1.5},
	"others_to_worst": {"1": 1.5}
}`

func writeProblem(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestEvaluateCommandTerminal(t *testing.T) {
	dir := t.TempDir()
	path := writeProblem(t, dir, "purchase.yaml", purchaseYAML)

	out, _, err := run(t, "", "evaluate", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Purchase")
	assert.Contains(t, out, "Price")
	assert.Contains(t, out, "34.9%")
	assert.Contains(t, out, "30.2%")
	assert.Contains(t, out, "Consistency Ratio: 0.698")
	assert.Contains(t, out, "Warning: The comparisons may be inconsistent")
}

func TestEvaluateCommandJSONKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeProblem(t, dir, "purchase.yaml", purchaseYAML)
	b := writeProblem(t, dir, "pair.json", pairJSON)

	out, _, err := run(t, "", "evaluate", "--format", "json", a, b)
	require.NoError(t, err)

	var evals []report.JSONEvaluation
	require.NoError(t, json.Unmarshal([]byte(out), &evals))
	require.Len(t, evals, 2)
	assert.Equal(t, "Purchase", evals[0].Name)
	assert.Equal(t, "pair", evals[1].Name, "unnamed problems take the file name")
	assert.True(t, evals[1].IsConsistent)
	assert.InDelta(t, 0.5, evals[1].Weights[0].Weight, 1e-9)
}

func TestEvaluateCommandStdin(t *testing.T) {
	out, _, err := run(t, pairJSON, "evaluate", "-f", "json", "-")
	require.NoError(t, err)

	var eval report.JSONEvaluation
	require.NoError(t, json.Unmarshal([]byte(out), &eval))
	assert.Len(t, eval.Weights, 2)
}

func TestEvaluateCommandReportsBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeProblem(t, dir, "purchase.yaml", purchaseYAML)
	bad := writeProblem(t, dir, "bad.yaml", "criteria:\n  - id: 1\n")

	out, _, err := run(t, "", "evaluate", "-f", "json", good, bad, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
	assert.Contains(t, err.Error(), "missing.yaml")

	var eval report.JSONEvaluation
	require.NoError(t, json.Unmarshal([]byte(out), &eval), "good file is still rendered")
	assert.Equal(t, "Purchase", eval.Name)
}

func TestEvaluateCommandUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeProblem(t, dir, "purchase.yaml", purchaseYAML)

	_, _, err := run(t, "", "evaluate", "--format", "xml", path)
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeProblem(t, dir, "purchase.yaml", purchaseYAML)
	wide := writeProblem(t, dir, "wide.json", `{
		"criteria": [{"id": 1, "name": "a"}, {"id": 2, "name": "b"}],
		"best": 1, "worst": 2, "best_to_others": {"2": 15}
	}`)

	out, _, err := run(t, "", "validate", good, wide)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+good)
	assert.Contains(t, out, "ok   "+wide)

	out, errOut, err := run(t, "", "validate", "--strict", good, wide)
	require.Error(t, err)
	assert.Contains(t, out, "ok   "+good)
	assert.Contains(t, errOut, "FAIL "+wide)
	assert.Contains(t, err.Error(), "outside [1, 9]")
}

func TestValidateCommandMissingSelection(t *testing.T) {
	dir := t.TempDir()
	path := writeProblem(t, dir, "open.yaml", "criteria:\n  - {id: 1, name: a}\n  - {id: 2, name: b}\n")

	_, _, err := run(t, "", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "best")
}

func TestConfigMaxCriteria(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeProblem(t, dir, "weigh.yaml", "evaluation:\n  max_criteria: 2\n")
	path := writeProblem(t, dir, "purchase.yaml", purchaseYAML)

	_, _, err := run(t, "", "evaluate", "--config", cfgPath, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many criteria")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "weigh "+Version+"\n", out)
}
