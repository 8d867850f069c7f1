package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStore opens a store in a fresh directory.
func newStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

// writeConfig writes a hand-edited config.toml into dir.
func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600))
}

func TestNewConfigStore_CreatesPrivateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles", "staging")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), store.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	assert.Empty(t, store.Keys(), "no file yet means no settings")
}

func TestNewConfigStore_DefaultsToHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".agentops", ConfigFileName), store.Path())
}

func TestNewConfigStore_Errors(t *testing.T) {
	t.Run("directory cannot be created", func(t *testing.T) {
		store, err := NewConfigStore("/dev/null/agentops")
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("file is not toml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "[backend\nbase_url = ")

		store, err := NewConfigStore(dir)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestNewConfigStore_BlankFiles(t *testing.T) {
	for name, content := range map[string]string{
		"empty":        "",
		"comment only": "# agentops settings\n\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, content)

			store, err := NewConfigStore(dir)
			require.NoError(t, err)

			_, ok := store.Get("backend.base_url")
			assert.False(t, ok)
		})
	}
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("backend.base_url", "https://ops.example.com/api"))
	require.NoError(t, store.Set("backend.timeout_seconds", 30))
	require.NoError(t, store.Set("backend.rate_limit", 2.5))
	require.NoError(t, store.Set("history.enabled", true))
	require.NoError(t, store.Set("auth.scopes", []string{"logs.read"}))

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "https://ops.example.com/api", store.GetString("backend.base_url"))
		assert.Empty(t, store.GetString("backend.timeout_seconds"), "wrong type")
		assert.Empty(t, store.GetString("auth.token"), "missing")
	})

	t.Run("int", func(t *testing.T) {
		assert.Equal(t, 30, store.GetInt("backend.timeout_seconds"))
		assert.Zero(t, store.GetInt("backend.base_url"))
		assert.Zero(t, store.GetInt("backend.missing"))
	})

	t.Run("float widens integers", func(t *testing.T) {
		assert.InDelta(t, 2.5, store.GetFloat("backend.rate_limit"), 1e-9)
		assert.InDelta(t, 30.0, store.GetFloat("backend.timeout_seconds"), 1e-9)
		assert.Zero(t, store.GetFloat("history.enabled"))
	})

	t.Run("bool", func(t *testing.T) {
		assert.True(t, store.GetBool("history.enabled"))
		assert.False(t, store.GetBool("backend.base_url"))
		assert.False(t, store.GetBool("history.missing"))
	})

	t.Run("string slice", func(t *testing.T) {
		assert.Equal(t, []string{"logs.read"}, store.GetStringSlice("auth.scopes"))
		assert.Nil(t, store.GetStringSlice("backend.base_url"))
	})
}

func TestConfigStore_GetInt_AcceptsDecodedInt64(t *testing.T) {
	store, _ := newStore(t)

	store.mu.Lock()
	store.data["backend.timeout_seconds"] = int64(45)
	store.mu.Unlock()

	assert.Equal(t, 45, store.GetInt("backend.timeout_seconds"))
}

func TestConfigStore_SettingsSurviveReopen(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Set("backend.base_url", "https://ops.example.com"))
	require.NoError(t, store.Set("backend.timeout_seconds", int64(15)))
	require.NoError(t, store.Set("backend.rate_limit", 0.5))
	require.NoError(t, store.Set("auth.method", "client_credentials"))
	require.NoError(t, store.Set("auth.client_secret", "cs_live_9f8e7d6c5b4a"))
	require.NoError(t, store.Set("history.enabled", false))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://ops.example.com", reopened.GetString("backend.base_url"))
	assert.Equal(t, 15, reopened.GetInt("backend.timeout_seconds"))
	assert.InDelta(t, 0.5, reopened.GetFloat("backend.rate_limit"), 1e-9)
	assert.Equal(t, "client_credentials", reopened.GetString("auth.method"))
	assert.Equal(t, "cs_live_9f8e7d6c5b4a", reopened.GetString("auth.client_secret"))
	enabled, ok := reopened.Get("history.enabled")
	require.True(t, ok)
	assert.Equal(t, false, enabled)
}

func TestConfigStore_OverwriteToken(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("auth.token", "bearer-old"))
	require.NoError(t, store.Set("auth.token", "bearer-new"))

	assert.Equal(t, "bearer-new", store.GetString("auth.token"))
}

func TestConfigStore_FileIsOwnerOnly(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("auth.token", "bearer-abc123"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Set("backend.base_url", "https://ops.example.com/api"))
	require.NoError(t, store.Set("auth.scopes", []string{"logs.read", "contexts.read"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[backend]")
	assert.Contains(t, string(raw), "[auth]")

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://ops.example.com/api", reopened.GetString("backend.base_url"))
	assert.Equal(t, []string{"logs.read", "contexts.read"}, reopened.GetStringSlice("auth.scopes"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[backend]
base_url = "http://localhost:8080"
timeout_seconds = 10
rate_limit = 3

[contexts]
version_order = "numeric"

[history]
enabled = false
`)

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", store.GetString("backend.base_url"))
	assert.Equal(t, 10, store.GetInt("backend.timeout_seconds"))
	assert.InDelta(t, 3.0, store.GetFloat("backend.rate_limit"), 1e-9)
	assert.Equal(t, "numeric", store.GetString("contexts.version_order"))
	assert.Equal(t, []string{
		"backend.base_url", "backend.rate_limit", "backend.timeout_seconds",
		"contexts.version_order", "history.enabled",
	}, store.Keys())
}

func TestConfigStore_SaveFlushesDirectEdits(t *testing.T) {
	store, dir := newStore(t)

	store.mu.Lock()
	store.data["contexts.version_order"] = "numeric"
	store.mu.Unlock()
	require.NoError(t, store.Save())

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "numeric", reopened.GetString("contexts.version_order"))
}

func TestConfigStore_Load(t *testing.T) {
	t.Run("picks up external edits", func(t *testing.T) {
		store, dir := newStore(t)
		require.NoError(t, store.Set("backend.base_url", "https://old.example.com"))

		writeConfig(t, dir, "[backend]\nbase_url = \"https://new.example.com\"\n")
		require.NoError(t, store.Load())

		assert.Equal(t, "https://new.example.com", store.GetString("backend.base_url"))
	})

	t.Run("broken edit is rejected", func(t *testing.T) {
		store, dir := newStore(t)
		require.NoError(t, store.Set("backend.base_url", "https://ops.example.com"))

		writeConfig(t, dir, "base_url = ][")
		assert.Error(t, store.Load())
		assert.Equal(t, "https://ops.example.com", store.GetString("backend.base_url"))
	})

	t.Run("unreadable file", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits do not bind root")
		}
		store, _ := newStore(t)
		require.NoError(t, store.Set("auth.token", "bearer-abc123"))
		require.NoError(t, os.Chmod(store.Path(), 0000))
		t.Cleanup(func() { _ = os.Chmod(store.Path(), 0600) })

		err := store.Load()
		assert.Error(t, err)
		assert.False(t, os.IsNotExist(err))
	})
}

func TestConfigStore_FailedWrites(t *testing.T) {
	t.Run("unencodable value keeps previous", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Set("auth.method", "token"))

		require.Error(t, store.Set("auth.method", make(chan int)))
		assert.Equal(t, "token", store.GetString("auth.method"))

		require.Error(t, store.Set("auth.token", make(chan int)))
		_, ok := store.Get("auth.token")
		assert.False(t, ok)
	})

	t.Run("path is a directory", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Set("backend.base_url", "https://ops.example.com"))
		require.NoError(t, os.Remove(store.Path()))
		require.NoError(t, os.Mkdir(store.Path(), 0700))

		assert.Error(t, store.Set("auth.token", "bearer-abc123"))
		_, ok := store.Get("auth.token")
		assert.False(t, ok)
	})
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store, _ := newStore(t)
	keys := []string{"backend.base_url", "auth.token", "auth.client_id", "contexts.version_order"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := keys[i%len(keys)]
			_ = store.Set(key, "v")
			_ = store.GetString(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, keys, store.Keys())
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"history":            true,
		"history.enabled":    false,
		"auth.method":        "token",
		"auth.oauth.scopes":  []string{"logs.read"},
		"backend.rate_limit": 2.0,
		"backend.base_url":   "https://ops.example.com",
	})

	assert.Equal(t, true, nested["history"])
	assert.Equal(t, false, nested["history.enabled"], "scalar prefix keeps the longer key flat")
	assert.Equal(t, map[string]any{
		"method": "token",
		"oauth":  map[string]any{"scopes": []string{"logs.read"}},
	}, nested["auth"])
	assert.Equal(t, map[string]any{
		"rate_limit": 2.0,
		"base_url":   "https://ops.example.com",
	}, nested["backend"])
}
