// File: internal/session/validator_test.go
package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nyxaris9/socialup-cli/internal/config"
	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/store"
	"github.com/nyxaris9/socialup-cli/pkg/browser"
)

func newTestValidator(t *testing.T, cfg *config.Config, b browser.Browser) *Validator {
	t.Helper()
	return NewValidator(cfg, platform.NewRegistry(), b, zap.NewNop())
}

// writeBlob drops a minimal session blob into the configured session dir and
// returns its file name.
func writeBlob(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	state := &browser.StorageState{
		Cookies: []browser.Cookie{{Name: "sessionid", Value: "v", Domain: ".example.com"}},
	}
	require.NoError(t, state.WriteFile(filepath.Join(cfg.SessionDir(), name)))
	return name
}

func TestValidateNeverErrors(t *testing.T) {
	t.Run("unknown platform type is invalid", func(t *testing.T) {
		cfg := testConfig(t)
		fb := &fakeBrowser{session: &fakeSession{}}
		v := newTestValidator(t, cfg, fb)

		assert.False(t, v.Validate(context.Background(), 99, "whatever.json"))
		assert.Zero(t, fb.launchCount())
	})

	t.Run("missing blob is invalid", func(t *testing.T) {
		cfg := testConfig(t)
		fb := &fakeBrowser{session: &fakeSession{}}
		v := newTestValidator(t, cfg, fb)

		assert.False(t, v.Validate(context.Background(), 1, "does_not_exist.json"))
		assert.Zero(t, fb.launchCount(), "no browser may launch without a loadable blob")
	})

	t.Run("corrupt blob is invalid", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.MkdirAll(cfg.SessionDir(), 0o755))
		path := filepath.Join(cfg.SessionDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		fb := &fakeBrowser{session: &fakeSession{}}
		v := newTestValidator(t, cfg, fb)

		assert.False(t, v.Validate(context.Background(), 1, "broken.json"))
		assert.Zero(t, fb.launchCount())
	})

	t.Run("browser launch failure is invalid", func(t *testing.T) {
		cfg := testConfig(t)
		name := writeBlob(t, cfg, "xiaohongshu_cookie_a.json")
		fb := &fakeBrowser{launchErr: assert.AnError}
		v := newTestValidator(t, cfg, fb)

		assert.False(t, v.Validate(context.Background(), 1, name))
	})

	t.Run("navigation failure is invalid and releases the browser", func(t *testing.T) {
		cfg := testConfig(t)
		name := writeBlob(t, cfg, "xiaohongshu_cookie_b.json")
		sess := &fakeSession{navErr: assert.AnError}
		fb := &fakeBrowser{session: sess}
		v := newTestValidator(t, cfg, fb)

		assert.False(t, v.Validate(context.Background(), 1, name))
		assert.True(t, sess.isClosed())
	})
}

func TestValidateJudgesFinalState(t *testing.T) {
	t.Run("clean personal URL is valid", func(t *testing.T) {
		cfg := testConfig(t)
		name := writeBlob(t, cfg, "xiaohongshu_cookie_c.json")
		sess := &fakeSession{urls: []string{"https://creator.xiaohongshu.com/new/home"}}
		fb := &fakeBrowser{session: sess}
		v := newTestValidator(t, cfg, fb)

		assert.True(t, v.Validate(context.Background(), 1, name))

		// Validation runs headless with the stored state seeded.
		opts := fb.lastLaunch()
		assert.True(t, opts.Headless)
		require.NotNil(t, opts.State)
		assert.Equal(t, []string{"sessionid"}, opts.State.CookieNames())
		assert.True(t, sess.isClosed())
	})

	t.Run("redirect back to a signin page is invalid", func(t *testing.T) {
		cfg := testConfig(t)
		name := writeBlob(t, cfg, "xiaohongshu_cookie_d.json")
		sess := &fakeSession{urls: []string{"https://creator.xiaohongshu.com/signin?redirect=home"}}
		fb := &fakeBrowser{session: sess}
		v := newTestValidator(t, cfg, fb)

		assert.False(t, v.Validate(context.Background(), 1, name))
	})

	t.Run("douyin login prompt in page content is invalid", func(t *testing.T) {
		cfg := testConfig(t)
		name := writeBlob(t, cfg, "douyin_cookie_e.json")
		sess := &fakeSession{
			urls:    []string{"https://creator.douyin.com/creator-micro/home"},
			content: "<html><body>扫码登录</body></html>",
		}
		fb := &fakeBrowser{session: sess}
		v := newTestValidator(t, cfg, fb)

		assert.False(t, v.Validate(context.Background(), 3, name))
	})

	t.Run("content capture failure degrades to the URL judgement", func(t *testing.T) {
		cfg := testConfig(t)
		name := writeBlob(t, cfg, "douyin_cookie_f.json")
		sess := &fakeSession{
			urls:       []string{"https://creator.douyin.com/creator-micro/home"},
			contentErr: assert.AnError,
		}
		fb := &fakeBrowser{session: sess}
		v := newTestValidator(t, cfg, fb)

		assert.True(t, v.Validate(context.Background(), 3, name))
	})
}

func TestCheckAll(t *testing.T) {
	cfg := testConfig(t)
	valid := writeBlob(t, cfg, "xiaohongshu_cookie_good.json")
	sess := &fakeSession{urls: []string{"https://creator.xiaohongshu.com/new/home"}}
	fb := &fakeBrowser{session: sess}
	v := newTestValidator(t, cfg, fb)

	accounts := []store.Account{
		{ID: 1, Type: 1, FilePath: valid, UserName: "good"},
		{ID: 2, Type: 1, FilePath: "missing.json", UserName: "stale"},
		{ID: 3, Type: 99, FilePath: valid, UserName: "odd"},
	}

	results := v.CheckAll(context.Background(), accounts)

	require.Len(t, results, 3)
	assert.True(t, results[1])
	assert.False(t, results[2])
	assert.False(t, results[3])
}
