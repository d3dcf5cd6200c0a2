package questionbank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

func TestBuiltin(t *testing.T) {
	bank := Builtin()
	require.Equal(t, 12, bank.Len())

	for i, q := range bank.All() {
		assert.Equal(t, uint(i+1), q.ID, "ID идут подряд с 1")
		assert.True(t, q.HasOption(q.CorrectAnswer), "вопрос %d: правильный ответ среди вариантов", q.ID)
		assert.NotContains(t, q.Prompt, SpectrumPlaceholder)
		assert.NotContains(t, q.PromptHard, SpectrumPlaceholder)
	}

	first, err := bank.ByID(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alcohol", "Ketone", "Ester", "Amine"}, first.Options)
	assert.Equal(t, "Ketone", first.CorrectAnswer)
	assert.Contains(t, first.PromptFor(entity.TierEasy), DefaultEasyPlaceholder)
}

func TestBank_ByIDBounds(t *testing.T) {
	bank := Builtin()

	_, err := bank.ByID(0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = bank.ByID(uint(bank.Len() + 1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBank_SliceIsCopy(t *testing.T) {
	bank := New([]entity.Question{
		{Prompt: "a", Options: []string{"x", "y"}, CorrectAnswer: "x"},
		{Prompt: "b", Options: []string{"x", "y"}, CorrectAnswer: "y"},
		{Prompt: "c", Options: []string{"x", "y"}, CorrectAnswer: "x"},
	})

	part := bank.Slice(1, 10)
	require.Len(t, part, 2)
	assert.Equal(t, uint(2), part[0].ID)

	part[0].Options[0] = "changed"
	again, err := bank.ByID(2)
	require.NoError(t, err)
	assert.Equal(t, "x", again.Options[0], "изменение копии не затрагивает банк")

	assert.Empty(t, bank.Slice(5, 10))
	assert.Empty(t, bank.Slice(2, 1))
}
