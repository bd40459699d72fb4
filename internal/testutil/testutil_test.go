package testutil

import (
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lepinkainen/bookrank/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_Path(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("a", "b.txt")
	assert.Equal(t, filepath.Join(env.RootDir(), "a", "b.txt"), path)
	assert.True(t, strings.HasPrefix(env.DBPath("books"), env.RootDir()))
}

func TestTestEnv_WriteReadFileString(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/dir/file.txt", "hello")
	env.RequireFileExists("nested/dir/file.txt")
	env.RequireFileNotExists("nested/other.txt")
	assert.Equal(t, "hello", env.ReadFileString("nested/dir/file.txt"))
	env.AssertFileContains("nested/dir/file.txt", "ell")
}

func TestGoldenHelper_AssertGoldenString(t *testing.T) {
	t.Setenv("UPDATE_GOLDEN", "")
	env := NewTestEnv(t)
	env.WriteFileString("golden/out.txt", "expected")

	g := NewGoldenHelper(t, env.Path("golden"))
	assert.Equal(t, env.Path("golden", "out.txt"), g.GoldenPath("out.txt"))
	g.AssertGoldenString("out.txt", "expected")
}

func TestResetConfig(t *testing.T) {
	config.NYTAPIKey = "before"

	t.Run("inner", func(t *testing.T) {
		ResetConfig(t)
		config.NYTAPIKey = "changed"
		viper.Set("nyt.apikey", "changed")
	})

	assert.Equal(t, "before", config.NYTAPIKey)
	assert.False(t, viper.IsSet("nyt.apikey"))
	config.NYTAPIKey = ""
}

func TestSetupTestCache(t *testing.T) {
	ResetConfig(t)
	env := NewTestEnv(t)

	path := SetupTestCache(t, env)
	require.Equal(t, path, viper.GetString("cache.dbfile"))
	require.Equal(t, "24h", viper.GetString("cache.ttl"))
}

func TestNewIPv4TestServer(t *testing.T) {
	server := NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusTeapot, `{"ok":true}`)
	}))

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
