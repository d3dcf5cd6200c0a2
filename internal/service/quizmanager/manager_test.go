package quizmanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
	"github.com/yourusername/spectra-quiz/internal/repository/memory"
)

func newTestManager(t *testing.T) (*Manager, *engineFixture, *memory.CacheRepo) {
	t.Helper()
	f := newFixture(t, defaultConfig())
	cache := memory.NewCacheRepo()
	return NewManager(f.engine, NewRunStore(cache, time.Hour)), f, cache
}

func TestManager_PersistsStateBetweenCalls(t *testing.T) {
	m, f, _ := newTestManager(t)
	ctx := context.Background()

	f.players.On("Register", mock.Anything, mock.Anything).Return(&entity.User{ID: 7, Name: "Ada"}, nil).Once()
	f.answers.On("RecordAnswer", mock.Anything, mock.Anything, false).Return(nil)

	view, err := m.Start(ctx, "sess-1", StartRequest{Registration: Registration{Name: "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, view.Status)
	require.NotNil(t, view.Question)
	assert.NotContains(t, view.Question.Options, "")

	result, err := m.Submit(ctx, "sess-1", "Ketone")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)

	current, err := m.Current("sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, current.Score)
	assert.True(t, current.Question.Committed)

	next, err := m.Advance(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.Question.Number)

	other, err := m.Current("sess-2")
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, other.Status, "сессии не видят состояние друг друга")

	reset, err := m.Restart("sess-1")
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, reset.Status)
	assert.Zero(t, reset.Score)
}

func TestManager_FailedOperationDoesNotSave(t *testing.T) {
	m, f, _ := newTestManager(t)
	ctx := context.Background()

	f.players.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.ErrConflict).Once()

	_, err := m.Start(ctx, "sess-1", StartRequest{Registration: Registration{Name: "Ada"}})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	current, err := m.Current("sess-1")
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, current.Status)
}

func TestRunStore_LockIsExclusive(t *testing.T) {
	store := NewRunStore(memory.NewCacheRepo(), time.Hour)

	unlock, err := store.Lock("sess-1")
	require.NoError(t, err)

	otherUnlock, err := store.Lock("sess-2")
	require.NoError(t, err, "блокировки разных сессий независимы")
	otherUnlock()

	unlock()
	again, err := store.Lock("sess-1")
	require.NoError(t, err)
	again()
}

func TestRunStore_UnlockKeepsForeignLock(t *testing.T) {
	cache := memory.NewCacheRepo()
	store := NewRunStore(cache, time.Hour)

	unlock, err := store.Lock("sess-1")
	require.NoError(t, err)

	// Блокировка истекла, и её захватил другой запрос
	require.NoError(t, cache.Set(runKey("sess-1")+":lock", "other-owner", time.Minute))
	unlock()

	val, err := cache.Get(runKey("sess-1") + ":lock")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", val)
}

func TestRunStore_LoadUnknownSession(t *testing.T) {
	store := NewRunStore(memory.NewCacheRepo(), time.Hour)

	st, err := store.Load("fresh")
	require.NoError(t, err)
	assert.Equal(t, *NewRunState("fresh"), *st)

	st.Status = StatusInProgress
	st.QuestionIDs = []uint{3, 4}
	require.NoError(t, store.Save(st))

	loaded, err := store.Load("fresh")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, loaded.Status)
	assert.Equal(t, []uint{3, 4}, loaded.QuestionIDs)

	require.NoError(t, store.Delete("fresh"))
	loaded, err = store.Load("fresh")
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, loaded.Status)
}
