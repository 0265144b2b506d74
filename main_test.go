package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labreport/config"
	"github.com/ByLCY/labreport/fonts"
	"github.com/ByLCY/labreport/report"
)

type latinOnly struct{}

func (latinOnly) ResolveChinese() fonts.Handle { return fonts.Handle{Fallback: true} }

func newGenerator(t *testing.T) *report.Generator {
	t.Helper()
	gen, err := report.NewGenerator(report.WithFontResolver(latinOnly{}))
	require.NoError(t, err)
	return gen
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFieldsJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	js := writeFile(t, dir, "fields.json", `{"ci_no": "CI-1", "order_qty": 1200}`)
	fields, err := loadFields(js)
	require.NoError(t, err)
	assert.Equal(t, "CI-1", fields.String("ci_no"))
	assert.Equal(t, "1200", fields.String("order_qty"))

	yml := writeFile(t, dir, "fields.yaml", "ci_no: CI-2\norder_qty: 300\n")
	fields, err = loadFields(yml)
	require.NoError(t, err)
	assert.Equal(t, "CI-2", fields.String("ci_no"))
	assert.Equal(t, "300", fields.String("order_qty"))

	_, err = loadFields(writeFile(t, dir, "bad.json", `{`))
	assert.Error(t, err)
	_, err = loadFields(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestRunWritesPDFIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fields.json", `{"ci_no": "CI-9", "style_no": "S-1"}`)
	outDir := filepath.Join(dir, "out")
	debug := filepath.Join(dir, "debug", "layout.json")

	path, err := run(newGenerator(t), config.Default(), cliOptions{
		input: in, output: outDir, lang: "en", uiLang: "en", city: "Beijing", debug: debug,
	})
	require.NoError(t, err)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Physical_Test_Report_CI-9_Beijing_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	info, err := os.Stat(debug)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

func TestRunExplicitFileAndDefaultCity(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fields.yml", "ci_no: CI-3\nstyle_no: S-3\n")
	out := filepath.Join(dir, "report.pdf")
	cfg := config.Default()
	cfg.Report.DefaultCity = "Wuhan"

	path, err := run(newGenerator(t), cfg, cliOptions{input: in, output: out, lang: "en", uiLang: "zh"})
	require.NoError(t, err)
	assert.Equal(t, out, path)
	_, err = os.Stat(out)
	require.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	gen := newGenerator(t)
	cfg := config.Default()

	_, err := run(gen, cfg, cliOptions{lang: "en", uiLang: "en"})
	assert.Error(t, err)

	in := writeFile(t, dir, "fields.json", `{"ci_no": "CI"}`)
	_, err = run(gen, cfg, cliOptions{input: in, output: dir, lang: "en", uiLang: "en"})
	assert.ErrorIs(t, err, report.ErrIncomplete)

	full := writeFile(t, dir, "full.json", `{"ci_no": "CI", "style_no": "S"}`)
	_, err = run(gen, cfg, cliOptions{input: full, output: dir, lang: "xx", uiLang: "en"})
	assert.Error(t, err)
}

func TestPrintKeys(t *testing.T) {
	var buf bytes.Buffer
	printKeys(&buf)
	assert.Contains(t, buf.String(), "title\tPHYSICAL TEST REPORT\t物理测试报告\n")
}

func TestFieldTemplateRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFieldTemplate(&buf))

	path := writeFile(t, t.TempDir(), "template.json", buf.String())
	fields, err := loadFields(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, report.FieldKeys(), fields.Keys())
	for _, key := range fields.Keys() {
		assert.False(t, fields.Present(key), key)
	}
	assert.ErrorIs(t, report.Validate(fields), report.ErrIncomplete)
}
