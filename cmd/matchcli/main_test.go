package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	return p
}

func TestResolveInputsFromAssets(t *testing.T) {
	dir := t.TempDir()
	txt := touch(t, dir, "resume.txt")
	touch(t, dir, "resume.docx")
	job := touch(t, dir, "job.txt")

	resumes, jd, err := resolveInputs(options{assetsDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{txt}, resumes, "txt 优先于 docx")
	assert.Equal(t, job, jd)

	pdf := touch(t, dir, "resume.pdf")
	resumes, _, err = resolveInputs(options{assetsDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{pdf}, resumes, "pdf 优先")
}

func TestResolveInputsExplicitPathsWin(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "resume.txt")
	touch(t, dir, "job.txt")

	resumes, jd, err := resolveInputs(options{assetsDir: dir, resumes: []string{"a.md", "c.pdf"}, jdPath: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "c.pdf"}, resumes)
	assert.Equal(t, "b.txt", jd)
}

func TestResolveInputsMissing(t *testing.T) {
	_, _, err := resolveInputs(options{resumes: []string{"cv.txt"}})
	assert.ErrorIs(t, err, errNoInput)

	_, _, err = resolveInputs(options{assetsDir: t.TempDir()})
	assert.ErrorIs(t, err, errNoInput)
}

func TestRunOffline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resume.txt"),
		[]byte("Go engineer with 4 years of experience.\nSkills\nGo, Redis"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "job.txt"),
		[]byte("Looking for a Go engineer with Redis, 3+ years experience."), 0644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logger:\n  level: error\n"), 0644))

	stdout := os.Stdout
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	os.Stdout = devNull
	t.Cleanup(func() {
		os.Stdout = stdout
		devNull.Close()
	})

	err = run(t.Context(), options{configPath: cfgPath, assetsDir: dir, offline: true})
	assert.NoError(t, err)

	second := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(second, []byte("Python developer.\nSkills\nPython"), 0644))
	xlsx := filepath.Join(dir, "ranking.xlsx")
	err = run(t.Context(), options{
		configPath: cfgPath,
		resumes:    []string{filepath.Join(dir, "resume.txt"), second},
		jdPath:     filepath.Join(dir, "job.txt"),
		xlsxPath:   xlsx,
		offline:    true,
	})
	require.NoError(t, err)
	assert.FileExists(t, xlsx)
}
