package questionbank

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/spectra-quiz/internal/config"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

const ketoneDescription = `{
  "prompt": "Spectra were recorded on a 400 MHz instrument. The sample was dissolved in CDCl3. Look at {spectrum} carefully. Which functional group gives the band at 1715 cm-1?",
  "scores": {"Ketone": 1, "Alcohol": 0, "Ester": 0.5, "Amine": 0},
  "explanation": "C=O stretch",
  "category": "IR"
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func bankConfig(dir string) config.BankConfig {
	return config.BankConfig{
		Source:          config.BankSourceDirectory,
		DescriptionGlob: filepath.Join(dir, "questions", "*.json"),
		EasyImageGlob:   filepath.Join(dir, "assets", "easy_*.png"),
		HardImageGlob:   filepath.Join(dir, "assets", "hard_*.png"),
		AssetDir:        filepath.Join(dir, "assets"),
	}
}

func TestParseDescription_PreservesOptionOrder(t *testing.T) {
	desc, err := ParseDescription([]byte(ketoneDescription))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ketone", "Alcohol", "Ester", "Amine"}, desc.Options)
	assert.Equal(t, "Ketone", desc.CorrectAnswer)
	assert.Equal(t, "IR", desc.Category)
	assert.Equal(t, "Look at {spectrum} carefully. Which functional group gives the band at 1715 cm-1?", desc.Template)
}

func TestParseDescription_CorrectAnswerRules(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"no label scores 1", `{"prompt": "Q?", "scores": {"A": 0, "B": 0.5}}`},
		{"two labels score 1", `{"prompt": "Q?", "scores": {"A": 1, "B": 1}}`},
		{"scores missing", `{"prompt": "Q?"}`},
		{"scores not an object", `{"prompt": "Q?", "scores": ["A"]}`},
		{"duplicate label", `{"prompt": "Q?", "scores": {"A": 1, "A": 0}}`},
		{"empty prompt", `{"prompt": "  ", "scores": {"A": 1}}`},
		{"broken json", `{"prompt": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescription([]byte(tt.json))
			assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		})
	}
}

func TestLastSentences(t *testing.T) {
	assert.Equal(t, "Two. Three?", LastSentences("One. Two. Three?", 2))
	assert.Equal(t, "Only one", LastSentences("  Only one  ", 2))
	assert.Equal(t, "Peak at 1.5 ppm. Which group?", LastSentences("Intro! Peak at 1.5 ppm. Which group?", 2))
	assert.Equal(t, "B... C", LastSentences("A. B... C", 2))
	assert.Equal(t, "", LastSentences("", 2))
}

func TestInstantiate_LeavesUnknownPlaceholders(t *testing.T) {
	assert.Equal(t, "See the spectrum and {table}.", Instantiate("See {spectrum} and {table}.", "the spectrum"))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		writeFile(t, filepath.Join(dir, "questions", fmt.Sprintf("q%d.json", i)), ketoneDescription)
		writeFile(t, filepath.Join(dir, "assets", fmt.Sprintf("easy_%d.png", i)), "png")
		writeFile(t, filepath.Join(dir, "assets", fmt.Sprintf("hard_%d.png", i)), "png")
	}

	bank, err := LoadDirectory(bankConfig(dir))
	require.NoError(t, err)
	require.Equal(t, 3, bank.Len())

	q, err := bank.ByID(2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), q.ID)
	assert.Equal(t, "Look at the labelled spectrum carefully. Which functional group gives the band at 1715 cm-1?", q.Prompt)
	assert.Equal(t, "Look at the spectrum carefully. Which functional group gives the band at 1715 cm-1?", q.PromptHard)
	assert.Equal(t, "/assets/easy_2.png", q.ImageEasy)
	assert.Equal(t, "/assets/hard_2.png", q.ImageHard)
	assert.Equal(t, "Ketone", q.CorrectAnswer)
}

func TestLoadDirectory_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		writeFile(t, filepath.Join(dir, "questions", fmt.Sprintf("q%d.json", i)), ketoneDescription)
		writeFile(t, filepath.Join(dir, "assets", fmt.Sprintf("easy_%d.png", i)), "png")
	}
	writeFile(t, filepath.Join(dir, "assets", "hard_1.png"), "png")

	bank, err := LoadDirectory(bankConfig(dir))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Nil(t, bank, "при несовпадении количества вопросы не загружаются")
}

func TestLoadDirectory_Empty(t *testing.T) {
	bank, err := LoadDirectory(bankConfig(t.TempDir()))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Nil(t, bank)
}

func TestLoad_UnknownSource(t *testing.T) {
	_, err := Load(config.BankConfig{Source: "ftp"})
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}
