package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	assert.Equal(t, "easy_MS12.png", outputName("easy", "MS12", 1))
	assert.Equal(t, "easy_MS12_2.png", outputName("easy", "MS12", 2))
	assert.Equal(t, "hard_MS3_10.png", outputName("hard", "MS3", 10))
}

func TestIndexToken(t *testing.T) {
	assert.Equal(t, "MS7", indexToken("/data/spectra/MS7.pdf"))
	assert.Equal(t, "MS8", indexToken("MS8.PDF"))
}

func TestFindPDFs(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"MS2.pdf",
		"nested/MS1.pdf",
		"nested/deeper/MS3.pdf",
		"IR1.pdf",
		"MS4.png",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	}

	found, err := findPDFs(root, "MS*.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "MS2.pdf"),
		filepath.Join(root, "nested/MS1.pdf"),
		filepath.Join(root, "nested/deeper/MS3.pdf"),
	}, found)

	_, err = findPDFs(root, "[")
	assert.Error(t, err)
}
