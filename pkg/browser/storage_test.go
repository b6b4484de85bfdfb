// File: pkg/browser/storage_test.go
package browser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *StorageState {
	return &StorageState{
		Cookies: []Cookie{
			{
				Name:     "sessionid",
				Value:    "abc123",
				Domain:   ".douyin.com",
				Path:     "/",
				Expires:  float64(time.Now().Add(24 * time.Hour).Unix()),
				HTTPOnly: true,
				Secure:   true,
				SameSite: "Lax",
			},
			{Name: "tt_csrf", Value: "x", Domain: ".tiktok.com", Path: "/"},
		},
		Origins: []OriginState{
			{
				Origin: "https://creator.douyin.com",
				LocalStorage: []StorageEntry{
					{Name: "user_id", Value: "42"},
				},
			},
		},
	}
}

func TestStorageStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "douyin_cookie_alice.json")
	state := sampleState()

	require.NoError(t, state.WriteFile(path), "WriteFile must create parent directories")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "session blobs hold credentials")

	loaded, err := ReadStorageState(path)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestStorageStateOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.json")

	first := &StorageState{Cookies: []Cookie{{Name: "old", Value: "1"}}}
	require.NoError(t, first.WriteFile(path))

	second := &StorageState{Cookies: []Cookie{{Name: "new", Value: "2"}}}
	require.NoError(t, second.WriteFile(path), "re-login replaces the previous session")

	loaded, err := ReadStorageState(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, loaded.CookieNames())
}

func TestReadStorageStateErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadStorageState(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
		_, err := ReadStorageState(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "bad.json")
	})
}

func TestCookieNames(t *testing.T) {
	state := sampleState()
	assert.Equal(t, []string{"sessionid", "tt_csrf"}, state.CookieNames())

	empty := &StorageState{}
	assert.Empty(t, empty.CookieNames())
}

func TestLocalStorageSeedScript(t *testing.T) {
	t.Run("replays every stored entry", func(t *testing.T) {
		script, err := localStorageSeedScript([]StorageEntry{
			{Name: "user_id", Value: "42"},
			{Name: "token", Value: "abc"},
		})
		require.NoError(t, err)
		assert.Contains(t, script, "localStorage.setItem")
		assert.Contains(t, script, `"user_id":"42"`)
		assert.Contains(t, script, `"token":"abc"`)
	})

	t.Run("values with quotes and script fragments stay inert", func(t *testing.T) {
		script, err := localStorageSeedScript([]StorageEntry{
			{Name: "k", Value: `{"nested":"va\"lue"}</script>`},
		})
		require.NoError(t, err)
		// The raw value must only ever appear JSON-escaped.
		assert.NotContains(t, script, `"va"lue"`)
		assert.Contains(t, script, `\"nested\"`)
	})

	t.Run("no entries yields a harmless script", func(t *testing.T) {
		script, err := localStorageSeedScript(nil)
		require.NoError(t, err)
		assert.Contains(t, script, "{}")
	})
}

func TestCookieConversion(t *testing.T) {
	t.Run("from CDP cookies", func(t *testing.T) {
		in := []*network.Cookie{
			{
				Name:     "sessionid",
				Value:    "abc",
				Domain:   ".douyin.com",
				Path:     "/",
				Expires:  1924992000,
				HTTPOnly: true,
				Secure:   true,
				SameSite: network.CookieSameSiteLax,
			},
		}
		out := fromNetworkCookies(in)
		require.Len(t, out, 1)
		assert.Equal(t, "sessionid", out[0].Name)
		assert.Equal(t, "Lax", out[0].SameSite)
		assert.True(t, out[0].HTTPOnly)
	})

	t.Run("to CDP set-cookie params", func(t *testing.T) {
		in := []Cookie{
			{Name: "a", Value: "1", Domain: ".x.com", Path: "/", Expires: 1924992000, SameSite: "Strict"},
			{Name: "b", Value: "2", Domain: ".x.com", Path: "/"},
		}
		out := toCookieParams(in)
		require.Len(t, out, 2)

		require.NotNil(t, out[0].Expires)
		assert.Equal(t, int64(1924992000), time.Time(*out[0].Expires).Unix())
		assert.Equal(t, network.CookieSameSiteStrict, out[0].SameSite)

		// Session cookies carry no expiry and no same-site attribute.
		assert.Nil(t, out[1].Expires)
		assert.Empty(t, out[1].SameSite)
	})
}
