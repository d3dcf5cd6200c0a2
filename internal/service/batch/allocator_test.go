package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
	"github.com/yourusername/spectra-quiz/internal/service/questionbank"
)

// memoryBatchRepo - курсор в памяти для тестов
type memoryBatchRepo struct {
	current int
	set     bool
	err     error
}

func (r *memoryBatchRepo) Current(ctx context.Context) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if !r.set {
		return 1, nil
	}
	return r.current, nil
}

func (r *memoryBatchRepo) Set(ctx context.Context, batch int) error {
	if r.err != nil {
		return r.err
	}
	r.current, r.set = batch, true
	return nil
}

func (r *memoryBatchRepo) Rotate(ctx context.Context, fn func(int) (int, error)) error {
	current, err := r.Current(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return r.Set(ctx, next)
}

func bankOf(n int) *questionbank.Bank {
	questions := make([]entity.Question, n)
	for i := range questions {
		questions[i] = entity.Question{Options: []string{"a", "b"}, CorrectAnswer: "a"}
	}
	return questionbank.New(questions)
}

func ids(questions []entity.Question) []uint {
	out := make([]uint, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}

func TestTotalBatches(t *testing.T) {
	assert.Equal(t, 3, TotalBatches(12, 5))
	assert.Equal(t, 2, TotalBatches(10, 5))
	assert.Equal(t, 1, TotalBatches(3, 5))
	assert.Equal(t, 0, TotalBatches(0, 5))
	assert.Equal(t, 0, TotalBatches(12, 0))
}

func TestSelectBatch_TwelveByFive(t *testing.T) {
	ctx := context.Background()
	repo := &memoryBatchRepo{}
	alloc := NewAllocator(repo)
	bank := bankOf(12)

	expected := []struct {
		batch int
		ids   []uint
	}{
		{1, []uint{1, 2, 3, 4, 5}},
		{2, []uint{6, 7, 8, 9, 10}},
		{3, []uint{11, 12}},
		{1, []uint{1, 2, 3, 4, 5}},
	}
	for _, want := range expected {
		questions, served, err := alloc.SelectBatch(ctx, bank, 5)
		require.NoError(t, err)
		assert.Equal(t, want.batch, served)
		assert.Equal(t, want.ids, ids(questions))
	}

	current, err := alloc.CurrentBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current)
}

func TestSelectBatch_VisitsEveryBatchOnce(t *testing.T) {
	ctx := context.Background()
	alloc := NewAllocator(&memoryBatchRepo{})
	bank := bankOf(23)
	total := TotalBatches(bank.Len(), 4)

	seen := make(map[int]bool)
	for i := 0; i < total; i++ {
		_, served, err := alloc.SelectBatch(ctx, bank, 4)
		require.NoError(t, err)
		assert.LessOrEqual(t, served, total)
		assert.False(t, seen[served], "партия %d выдана дважды за круг", served)
		seen[served] = true
	}
	assert.Len(t, seen, total)

	_, served, err := alloc.SelectBatch(ctx, bank, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, served, "после полного круга снова первая партия")
}

func TestSelectBatch_CursorBeyondBankResets(t *testing.T) {
	ctx := context.Background()
	repo := &memoryBatchRepo{current: 9, set: true}
	alloc := NewAllocator(repo)

	questions, served, err := alloc.SelectBatch(ctx, bankOf(12), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, served)
	assert.Equal(t, []uint{1, 2, 3, 4, 5}, ids(questions))
	assert.Equal(t, 2, repo.current)
}

func TestSelectBatch_Errors(t *testing.T) {
	ctx := context.Background()
	alloc := NewAllocator(&memoryBatchRepo{})

	_, _, err := alloc.SelectBatch(ctx, bankOf(12), 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = alloc.SelectBatch(ctx, bankOf(0), 5)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	broken := NewAllocator(&memoryBatchRepo{err: errors.New("db down")})
	_, _, err = broken.SelectBatch(ctx, bankOf(12), 5)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestSelectBatch_ConcurrentStartsGetDistinctBatches(t *testing.T) {
	ctx := context.Background()
	alloc := NewAllocator(&memoryBatchRepo{})
	bank := bankOf(40)
	total := TotalBatches(bank.Len(), 5)

	var wg sync.WaitGroup
	results := make(chan int, total)
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, served, err := alloc.SelectBatch(ctx, bank, 5)
			if err == nil {
				results <- served
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for served := range results {
		assert.False(t, seen[served], "партия %d выдана двум стартам", served)
		seen[served] = true
	}
	assert.Len(t, seen, total)
}

func TestAdvance(t *testing.T) {
	ctx := context.Background()
	repo := &memoryBatchRepo{}
	alloc := NewAllocator(repo)

	require.NoError(t, alloc.Advance(ctx, 3))
	current, err := alloc.CurrentBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, current)

	assert.ErrorIs(t, alloc.Advance(ctx, 0), apperrors.ErrValidation)
}
