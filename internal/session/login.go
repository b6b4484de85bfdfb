// File: internal/session/login.go
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nyxaris9/socialup-cli/internal/config"
	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/store"
	"github.com/nyxaris9/socialup-cli/pkg/browser"
)

// Errors surfaced by login runs. They reach callers only as status events;
// the sentinels exist so tests and logs can identify the cause.
var (
	ErrUnknownPlatform = errors.New("unsupported platform type")
	ErrLoginTimeout    = errors.New("login not completed within the time limit")
)

// authCookieNames are cookie names whose presence is taken as evidence of a
// completed login, independent of the URL signal.
var authCookieNames = map[string]struct{}{
	"session": {},
	"token":   {},
	"cookie":  {},
	"auth":    {},
}

// loginPathMarker flags URLs still on a login page during the wait loop.
// Deliberately narrower than the validation keyword set: several platforms
// redirect to routes like "foryou" after login, which the validator treats
// as logged-out but which here mean the operator has finished.
const loginPathMarker = "login"

// Orchestrator drives interactive, human-completed logins. Each run owns one
// visible browser, reports progress on its own event stream and releases the
// browser on every exit path.
type Orchestrator struct {
	registry *platform.Registry
	browser  browser.Browser
	accounts *store.AccountRepository
	logger   *zap.Logger

	sessionDir   string
	loginTimeout time.Duration
	pollInterval time.Duration
	navTimeout   time.Duration
}

// NewOrchestrator wires a login orchestrator. The registry is passed in
// explicitly; nothing here reads ambient global state.
func NewOrchestrator(
	cfg *config.Config,
	registry *platform.Registry,
	b browser.Browser,
	accounts *store.AccountRepository,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:     registry,
		browser:      b,
		accounts:     accounts,
		logger:       logger.Named("login"),
		sessionDir:   cfg.SessionDir(),
		loginTimeout: cfg.Session.LoginTimeout,
		pollInterval: cfg.Session.PollInterval,
		navTimeout:   cfg.Session.NavigationTimeout,
	}
}

// Login starts a login run for the given platform type and account label and
// returns its event stream. The stream carries progress events and exactly
// one terminal event, after which it is closed. Cancelling ctx aborts the
// wait and tears the browser down.
func (o *Orchestrator) Login(ctx context.Context, platformType int, accountLabel string) <-chan StatusEvent {
	s := newStream(8)
	go o.run(ctx, platformType, accountLabel, s)
	return s.events()
}

func (o *Orchestrator) run(ctx context.Context, platformType int, accountLabel string, s *stream) {
	log := o.logger.With(zap.Int("type", platformType), zap.String("account", accountLabel))

	cfg, ok := o.registry.ByType(platformType)
	if !ok {
		log.Warn("Login requested for unknown platform type")
		s.terminate(StatusEvent{Code: CodeBadRequest, Msg: ErrUnknownPlatform.Error()})
		return
	}

	// Deterministic per platform+label: re-login for the same label
	// overwrites the previous blob on purpose.
	fileName := fmt.Sprintf("%s_cookie_%s.json", cfg.Key, accountLabel)

	record, err := o.acquire(ctx, cfg, accountLabel, fileName, s)
	if err != nil {
		log.Error("Login run failed", zap.Error(err))
		s.terminate(StatusEvent{Code: CodeFailure, Msg: fmt.Sprintf("login failed: %v", err)})
		return
	}

	log.Info("Login completed", zap.Int64("account_id", record.ID), zap.String("file", fileName))
	s.terminate(StatusEvent{Code: CodeOK, Msg: "login succeeded", Data: record})
}

// acquire performs the browser-facing part of a login run. The account row
// is inserted only after the session blob is safely on disk, so a failure
// event never leaves a partial record behind.
func (o *Orchestrator) acquire(
	ctx context.Context,
	cfg platform.Config,
	accountLabel, fileName string,
	s *stream,
) (*store.Account, error) {
	sess, err := o.browser.Launch(ctx, browser.Options{Headless: false})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			o.logger.Warn("Failed to close login browser", zap.Error(err))
		}
	}()

	if err := sess.Navigate(cfg.LoginURL, o.navTimeout); err != nil {
		return nil, err
	}

	s.publish(StatusEvent{
		Code: CodeOK,
		Msg:  fmt.Sprintf("complete the %s login in the opened browser window", cfg.Name),
	})

	if err := o.waitForLogin(ctx, sess); err != nil {
		return nil, err
	}

	state, err := sess.ExportState()
	if err != nil {
		return nil, fmt.Errorf("export session state: %w", err)
	}
	if err := state.WriteFile(filepath.Join(o.sessionDir, fileName)); err != nil {
		return nil, err
	}
	s.publish(StatusEvent{Code: CodeOK, Msg: "session saved"})

	id, err := o.accounts.Insert(ctx, cfg.Type, accountLabel, fileName, store.AccountValidated)
	if err != nil {
		return nil, fmt.Errorf("record account: %w", err)
	}

	return &store.Account{
		ID:       id,
		Type:     cfg.Type,
		FilePath: fileName,
		UserName: accountLabel,
		Status:   store.AccountValidated,
	}, nil
}

// waitForLogin polls the session until either completion signal fires: the
// URL has left the login page, or an authentication cookie has appeared.
// Polling instead of event subscription keeps the two signals race-free.
func (o *Orchestrator) waitForLogin(ctx context.Context, sess browser.Session) error {
	deadline := time.NewTimer(o.loginTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrLoginTimeout
		case <-ticker.C:
			done, err := o.loginComplete(sess)
			if err != nil {
				// A transient CDP hiccup mid-login is not fatal;
				// the next tick re-checks.
				o.logger.Debug("Login completion check failed", zap.Error(err))
				continue
			}
			if done {
				return nil
			}
		}
	}
}

// loginComplete evaluates both completion signals. Either one suffices.
func (o *Orchestrator) loginComplete(sess browser.Session) (bool, error) {
	url, err := sess.Location()
	if err != nil {
		return false, err
	}
	if !strings.Contains(strings.ToLower(url), loginPathMarker) {
		return true, nil
	}

	cookies, err := sess.Cookies()
	if err != nil {
		return false, err
	}
	for _, c := range cookies {
		if _, ok := authCookieNames[c.Name]; ok {
			return true, nil
		}
	}
	return false, nil
}
