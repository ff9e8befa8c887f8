package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/response"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const review = "The screen is great but the battery is awful."

func TestAnnotateSlimFromText(t *testing.T) {
	out, err := execute(t, review, "annotate", "--text", "--slim",
		"--set", "windowMin=0", "--set", "windowMax=2")
	require.NoError(t, err)

	var sd response.SlimDocument
	require.NoError(t, json.Unmarshal([]byte(out), &sd))
	assert.Equal(t, "stdin", sd.ID)
	require.Len(t, sd.Opinions, 2)
	assert.Equal(t, "screen", sd.Opinions[0].Target)
	assert.Equal(t, "positive", sd.Opinions[0].Polarity)
	assert.Equal(t, "battery", sd.Opinions[1].Target)
	assert.Equal(t, "negative", sd.Opinions[1].Polarity)
}

func TestSpansWithGazetteer(t *testing.T) {
	gaz := writeFile(t, "aspects.tsv", "battery life\tBATTERY\n")
	doc := writeFile(t, "phone.txt", "Battery life rocks.")

	out, err := execute(t, "", "spans", "--set", "targets="+gaz, doc)
	require.NoError(t, err)
	assert.Equal(t, "<START:BATTERY> Battery life <END> rocks .\n", out)
}

func TestLedgerLexiconAndRuns(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "ledger.db")
	dict := writeFile(t, "general.tsv", "great\tpositive\nawful\tnegative\n")

	out, err := execute(t, "", "lexicon", "import", "--ledger", ledger, dict)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 entries")

	out, err = execute(t, "", "lexicon", "list", "--ledger", ledger)
	require.NoError(t, err)
	assert.Equal(t, "general\n", out)

	doc := writeFile(t, "r1.txt", review)
	out, err = execute(t, "", "annotate", "--ledger", ledger, "--lexicon", "general", doc)
	require.NoError(t, err)
	assert.Contains(t, out, `"resource": "general"`)

	out, err = execute(t, "", "runs", "--ledger", ledger, "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "annotate")
	assert.Contains(t, out, `"screen"`)
}

func TestOutDirWritesOneFilePerDocument(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, "a.txt", "Great value.")
	b := writeFile(t, "b.txt", "Bad strap.")

	out, err := execute(t, "", "pol", "--slim", "--jobs", "2", "--out", dir, a, b)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.FileExists(t, filepath.Join(dir, "a.json"))
	assert.FileExists(t, filepath.Join(dir, "b.json"))
}

func TestConfigurationErrorsFailFast(t *testing.T) {
	_, err := execute(t, "", "ote", "--set", "clearFeatures=always", "missing.json")
	var ce *config.ConfigurationError
	assert.True(t, errors.As(err, &ce))

	_, err = execute(t, "", "annotate", "--lexicon", "general")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "opinion.yaml", "windowMin: 0\nwindowMax: 2\n")
	props, err := loadPropertiesFrom(t, cfg, "dedupe=yes")
	require.NoError(t, err)
	assert.Equal(t, config.Properties{"windowMin": "0", "windowMax": "2", "dedupe": "yes"}, props)
}

func loadPropertiesFrom(t *testing.T, path string, sets ...string) (config.Properties, error) {
	t.Helper()
	cmd := newRootCmd()
	args := []string{"--config", path}
	for _, s := range sets {
		args = append(args, "--set", s)
	}
	require.NoError(t, cmd.ParseFlags(args))
	return loadProperties(cmd)
}

func jsonDoc(id string) string {
	return `{"id":"` + id + `","text":[{"id":"w1","form":"Great","sent":1},{"id":"w2","form":"value","sent":1}],` +
		`"terms":[{"id":"t1","lemma":"great","form":"Great","span":["w1"]},{"id":"t2","lemma":"value","form":"value","span":["w2"]}]}`
}

func decodeAll(t *testing.T, out string) []response.SlimDocument {
	t.Helper()
	var docs []response.SlimDocument
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var sd response.SlimDocument
		require.NoError(t, dec.Decode(&sd))
		docs = append(docs, sd)
	}
	return docs
}

func TestInputsSharingBaseNameAreAllProcessed(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for sub, text := range map[string]string{"a": "Great value.", "b": "Bad strap."} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0755))
		p := filepath.Join(dir, sub, "review.txt")
		require.NoError(t, os.WriteFile(p, []byte(text), 0644))
		paths = append(paths, p)
	}

	out, err := execute(t, "", append([]string{"pol", "--slim"}, paths...)...)
	require.NoError(t, err)
	docs := decodeAll(t, out)
	require.Len(t, docs, 2)
	assert.Equal(t, "review", docs[0].ID)
	assert.Equal(t, "review-2", docs[1].ID)

	outDir := filepath.Join(dir, "out")
	_, err = execute(t, "", append([]string{"pol", "--slim", "--out", outDir}, paths...)...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "review.json"))
	assert.FileExists(t, filepath.Join(outDir, "review-2.json"))
}

func TestOutputNamesComeFromInputFiles(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte(jsonDoc("review")), 0644))
	require.NoError(t, os.WriteFile(b, []byte(jsonDoc("../escaped")), 0644))

	_, err := execute(t, "", "pol", "--out", outDir, a, b)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.json", "b.json"}, names)
	assert.NoFileExists(t, filepath.Join(dir, "escaped.json"))
}

func TestStdinIDWithPathIsNotUsedAsFileName(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	_, err := execute(t, jsonDoc("../escaped"), "pol", "--out", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "stdin.json"))
	assert.NoFileExists(t, filepath.Join(dir, "escaped.json"))

	assert.Equal(t, "review", entryID("review"))
	assert.Equal(t, "stdin", entryID(".."))
	assert.Equal(t, "stdin", entryID(`a\b`))
	assert.Equal(t, "stdin", entryID(""))
}
