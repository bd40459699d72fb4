package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lepinkainen/bookrank/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

type testData struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	NotFound bool   `json:"not_found"`
}

func setupTestCache(t *testing.T) *CacheDB {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	env := testutil.NewTestEnv(t)
	cache, err := NewCacheDB(env.DBPath("test_cache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	for _, schema := range AllCacheSchemas {
		require.NoError(t, cache.CreateTable(schema))
	}

	viper.Set("cache.ttl", "1h")
	return cache
}

func withGlobalCache(t *testing.T, cache *CacheDB) {
	t.Helper()

	oldCache := globalCache
	globalCache = cache
	globalCacheOnce = sync.Once{}
	globalCacheOnce.Do(func() {})

	t.Cleanup(func() {
		globalCache = oldCache
		globalCacheOnce = sync.Once{}
	})
}

func withClock(t *testing.T, ts time.Time) {
	t.Helper()

	orig := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = orig })
}

func TestGetOrFetch_CacheMissThenHit(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)

	calls := 0
	fetch := func() (testData, error) {
		calls++
		return testData{ID: 1, Name: "Dune"}, nil
	}

	first, fromCache, err := GetOrFetchWithTTL("openlibrary_cache", "9780441013593", fetch, nil)
	require.NoError(t, err)
	require.False(t, fromCache)
	require.Equal(t, "Dune", first.Name)

	second, fromCache, err := GetOrFetchWithTTL("openlibrary_cache", "9780441013593", fetch, nil)
	require.NoError(t, err)
	require.True(t, fromCache)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
}

func TestGetOrFetch_FetchErrorIsNotCached(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)

	_, _, err := GetOrFetchWithTTL("openlibrary_cache", "k", func() (testData, error) {
		return testData{}, errors.New("status 503")
	}, nil)
	require.Error(t, err)

	_, found, err := cache.Get("openlibrary_cache", "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestGetOrFetch_NegativeEntriesExpireSooner(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)
	viper.Set("cache.ttl", "720h")

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(t, start)

	selector := SelectNegativeCacheTTL(func(d testData) bool { return d.NotFound })
	_, _, err := GetOrFetchWithTTL("openlibrary_cache", "missing", func() (testData, error) {
		return testData{NotFound: true}, nil
	}, selector)
	require.NoError(t, err)
	_, _, err = GetOrFetchWithTTL("openlibrary_cache", "found", func() (testData, error) {
		return testData{ID: 2}, nil
	}, selector)
	require.NoError(t, err)

	withClock(t, start.Add(NegativeCacheTTL+time.Hour))

	_, found, err := cache.Get("openlibrary_cache", "missing")
	require.NoError(t, err)
	require.False(t, found, "negative entry outlived NegativeCacheTTL")

	_, found, err = cache.Get("openlibrary_cache", "found")
	require.NoError(t, err)
	require.True(t, found)
}

func TestCacheDB_ClearExpired(t *testing.T) {
	cache := setupTestCache(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(t, start)
	require.NoError(t, cache.Set("openlibrary_cache", "old", `{}`, time.Minute))
	require.NoError(t, cache.Set("openlibrary_cache", "new", `{}`, time.Hour))

	withClock(t, start.Add(10*time.Minute))
	rows, err := cache.ClearExpired("openlibrary_cache")
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	_, found, err := cache.Get("openlibrary_cache", "new")
	require.NoError(t, err)
	require.True(t, found)
}

func TestCacheDB_InvalidateSource(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("openlibrary_cache", "a", `{}`, time.Hour))
	require.NoError(t, cache.Set("openlibrary_cache", "b", `{}`, time.Hour))

	rows, err := cache.InvalidateSource("openlibrary_cache")
	require.NoError(t, err)
	require.EqualValues(t, 2, rows)
}

func TestCacheDB_RejectsUnknownTable(t *testing.T) {
	cache := setupTestCache(t)

	_, _, err := cache.Get("books; DROP TABLE books", "k")
	require.Error(t, err)
	require.Error(t, cache.Set("tmdb_cache", "k", "{}", time.Hour))
}

func TestInvalidateCacheCmd_UnknownSource(t *testing.T) {
	err := (&InvalidateCacheCmd{Source: "tmdb"}).Run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "valid sources are: openlibrary")
}

func TestInvalidateCacheCmd_Run(t *testing.T) {
	cache := setupTestCache(t)
	withGlobalCache(t, cache)
	require.NoError(t, cache.Set("openlibrary_cache", "a", `{}`, time.Hour))

	require.NoError(t, (&InvalidateCacheCmd{Source: "openlibrary"}).Run())

	_, found, err := cache.Get("openlibrary_cache", "a")
	require.NoError(t, err)
	require.False(t, found)
}
