package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

func TestCacheRepo_SetGetExpire(t *testing.T) {
	repo := NewCacheRepo()

	require.NoError(t, repo.Set("k", "v", 30*time.Millisecond))
	val, err := repo.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	require.NoError(t, repo.Set("forever", "v", 0))

	time.Sleep(60 * time.Millisecond)
	_, err = repo.Get("k")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	val, err = repo.Get("forever")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestCacheRepo_IncrementKeepsTTL(t *testing.T) {
	repo := NewCacheRepo()

	n, err := repo.Increment("rl")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, repo.Expire("rl", 50*time.Millisecond))

	n, err = repo.Increment("rl")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, expiresAt, ok := repo.cache.GetWithExpiration("rl")
	require.True(t, ok)
	assert.False(t, expiresAt.IsZero(), "инкремент не сбрасывает срок жизни")

	val, err := repo.Get("rl")
	require.NoError(t, err)
	assert.Equal(t, "2", val)

	time.Sleep(80 * time.Millisecond)
	n, err = repo.Increment("rl")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "после истечения счётчик начинается заново")
}

func TestCacheRepo_IncrementStringValue(t *testing.T) {
	repo := NewCacheRepo()

	require.NoError(t, repo.Set("v", "41", 0))
	n, err := repo.Increment("v")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	require.NoError(t, repo.Set("name", "Ada", 0))
	_, err = repo.Increment("name")
	assert.Error(t, err)
}

func TestCacheRepo_SetNX(t *testing.T) {
	repo := NewCacheRepo()

	ok, err := repo.SetNX("lock", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetNX("lock", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(60 * time.Millisecond)
	ok, err = repo.SetNX("lock", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheRepo_DeleteIfEquals(t *testing.T) {
	repo := NewCacheRepo()

	ok, err := repo.SetNX("lock", "owner-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	deleted, err := repo.DeleteIfEquals("lock", "owner-b")
	require.NoError(t, err)
	assert.False(t, deleted)
	val, err := repo.Get("lock")
	require.NoError(t, err)
	assert.Equal(t, "owner-a", val)

	deleted, err = repo.DeleteIfEquals("lock", "owner-a")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.Get("lock")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	deleted, err = repo.DeleteIfEquals("missing", "owner-a")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCacheRepo_JSON(t *testing.T) {
	repo := NewCacheRepo()
	type payload struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	require.NoError(t, repo.SetJSON("p", payload{Name: "Ada", Score: 3}, 0))
	var got payload
	require.NoError(t, repo.GetJSON("p", &got))
	assert.Equal(t, payload{Name: "Ada", Score: 3}, got)

	require.NoError(t, repo.Delete("p"))
	assert.ErrorIs(t, repo.GetJSON("p", &got), apperrors.ErrNotFound)
}

func TestCacheRepo_ExpiredKeysAreReclaimed(t *testing.T) {
	repo := newCacheRepo(5 * time.Millisecond)

	// Версионированные ключи лидерборда пишутся один раз и больше не читаются
	for i := 0; i < 1000; i++ {
		require.NoError(t, repo.SetJSON(fmt.Sprintf("leaderboard:points:v%d:10", i), []int{i}, time.Millisecond))
	}
	require.NoError(t, repo.Set("keep", "v", 0))

	require.Eventually(t, func() bool {
		return repo.cache.ItemCount() == 1
	}, time.Second, 10*time.Millisecond, "janitor должен удалить просроченные ключи")

	val, err := repo.Get("keep")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}
