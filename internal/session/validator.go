// File: internal/session/validator.go
package session

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nyxaris9/socialup-cli/internal/config"
	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/store"
	"github.com/nyxaris9/socialup-cli/pkg/browser"
)

// Validator re-checks stored sessions by driving a headless browser to the
// platform's personal page and applying the platform's login detector.
// Validation is best-effort: every failure mode folds into "invalid", and
// Validate never panics or returns an error, so callers can sweep many
// accounts in a loop without guarding each call.
type Validator struct {
	registry *platform.Registry
	browser  browser.Browser
	logger   *zap.Logger

	sessionDir  string
	navTimeout  time.Duration
	settleWait  time.Duration
	concurrency int
	limiter     *rate.Limiter
}

// NewValidator wires a session validator.
func NewValidator(
	cfg *config.Config,
	registry *platform.Registry,
	b browser.Browser,
	logger *zap.Logger,
) *Validator {
	perSec := cfg.Session.CheckRatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	return &Validator{
		registry:    registry,
		browser:     b,
		logger:      logger.Named("validator"),
		sessionDir:  cfg.SessionDir(),
		navTimeout:  cfg.Session.NavigationTimeout,
		settleWait:  cfg.Session.SettleWait,
		concurrency: cfg.Session.CheckConcurrency,
		limiter:     rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Validate reports whether the stored session still looks authenticated.
func (v *Validator) Validate(ctx context.Context, platformType int, fileRef string) bool {
	log := v.logger.With(zap.Int("type", platformType), zap.String("file", fileRef))

	cfg, ok := v.registry.ByType(platformType)
	if !ok {
		log.Warn("Cannot validate session for unknown platform type")
		return false
	}
	if cfg.PersonalURL == "" {
		log.Warn("Platform has no personal URL configured, treating session as invalid",
			zap.String("platform", cfg.Key))
		return false
	}

	state, err := browser.ReadStorageState(filepath.Join(v.sessionDir, fileRef))
	if err != nil {
		log.Warn("Could not load session blob", zap.Error(err))
		return false
	}

	sess, err := v.browser.Launch(ctx, browser.Options{Headless: true, State: state})
	if err != nil {
		log.Warn("Could not launch validation browser", zap.Error(err))
		return false
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			log.Warn("Failed to close validation browser", zap.Error(err))
		}
	}()

	if err := sess.Navigate(cfg.PersonalURL, v.navTimeout); err != nil {
		log.Info("Session invalid: personal page did not load", zap.Error(err))
		return false
	}

	// Give client-side redirects a moment to land before judging the URL.
	select {
	case <-time.After(v.settleWait):
	case <-ctx.Done():
		return false
	}

	url, err := sess.Location()
	if err != nil {
		log.Warn("Could not read post-navigation URL", zap.Error(err))
		return false
	}

	// Content is only consulted by detectors that need it; a capture
	// failure degrades to the URL-only judgement.
	content, err := sess.Content()
	if err != nil {
		log.Debug("Could not capture page content", zap.Error(err))
		content = ""
	}

	valid := v.registry.Detector(cfg.Key).Authenticated(url, content)
	log.Info("Session validation finished",
		zap.String("platform", cfg.Key),
		zap.String("url", url),
		zap.Bool("valid", valid),
	)
	return valid
}

// CheckAll validates a set of accounts concurrently, bounded by the
// configured concurrency and paced by the rate limiter so a large sweep does
// not hammer the platforms. The result maps account id to validity.
func (v *Validator) CheckAll(ctx context.Context, accounts []store.Account) map[int64]bool {
	results := make(map[int64]bool, len(accounts))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	for _, acc := range accounts {
		g.Go(func() error {
			if err := v.limiter.Wait(gctx); err != nil {
				return nil // context cancelled, leave the account unreported
			}
			ok := v.Validate(gctx, acc.Type, acc.FilePath)
			mu.Lock()
			results[acc.ID] = ok
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()
	return results
}
