// File: pkg/browser/browser.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nyxaris9/socialup-cli/internal/config"
	"github.com/nyxaris9/socialup-cli/pkg/browser/stealth"
)

// Options control how a session is launched.
type Options struct {
	// Headless selects a windowless browser. Interactive logins need a
	// visible window, validation runs do not.
	Headless bool
	// State pre-seeds the session with previously saved cookies.
	State *StorageState
}

// Session is a single isolated browser context. One session owns one browser
// process and one tab; sessions are never shared or pooled, so no state can
// bleed between accounts.
type Session interface {
	// Navigate loads a URL, bounded by the given timeout, and waits for
	// the document body to be ready.
	Navigate(url string, timeout time.Duration) error
	// Location returns the current top-frame URL.
	Location() (string, error)
	// Content returns the rendered document HTML.
	Content() (string, error)
	// Cookies returns all cookies visible to the session, including
	// HttpOnly ones.
	Cookies() ([]Cookie, error)
	// ExportState captures cookies and localStorage for persistence.
	ExportState() (*StorageState, error)
	// Close releases the tab and the browser process. Safe to call more
	// than once and on every exit path.
	Close(ctx context.Context) error
}

// Browser launches sessions. The interface exists so orchestration code can
// be tested against fakes instead of a real Chrome process.
type Browser interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// Launcher is the chromedp-backed Browser implementation.
type Launcher struct {
	cfg     config.BrowserConfig
	persona stealth.Persona
	logger  *zap.Logger
}

var _ Browser = (*Launcher)(nil)

// NewLauncher creates a launcher using the default stealth persona.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{
		cfg:     cfg,
		persona: stealth.DefaultPersona,
		logger:  logger.Named("browser"),
	}
}

// Launch starts a browser process, opens a tab, applies the stealth persona
// and seeds stored cookies. The process lives until Close or until ctx is
// cancelled, whichever comes first.
func (l *Launcher) Launch(ctx context.Context, opts Options) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, l.allocatorOptions(opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		id:          uuid.New().String(),
		tab:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}
	s.logger = l.logger.With(zap.String("session_id", s.id[:8]))

	// Opening about:blank forces the process to start and proves it is
	// responsive before any caller work begins.
	startCtx, cancel := context.WithTimeout(tabCtx, 30*time.Second)
	defer cancel()
	if err := chromedp.Run(startCtx, chromedp.Navigate("about:blank")); err != nil {
		s.release()
		return nil, fmt.Errorf("browser failed to start: %w", err)
	}

	if err := chromedp.Run(tabCtx, stealth.Apply(l.persona, s.logger)); err != nil {
		s.release()
		return nil, fmt.Errorf("failed to apply stealth persona: %w", err)
	}

	if opts.State != nil && (len(opts.State.Cookies) > 0 || len(opts.State.Origins) > 0) {
		if err := s.seed(opts.State); err != nil {
			s.release()
			return nil, fmt.Errorf("failed to seed session state: %w", err)
		}
	}

	s.logger.Debug("Browser session launched",
		zap.Bool("headless", opts.Headless),
		zap.Bool("seeded", opts.State != nil),
	)
	return s, nil
}

// allocatorOptions assembles launch flags. The stock chromedp defaults carry
// --enable-automation, which advertises automation to every page, so the set
// is built explicitly without it.
func (l *Launcher) allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	out := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-ipc-flooding-protection", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
	}

	out = append(out,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("ignore-certificate-errors", l.cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("start-maximized", !opts.Headless),
		chromedp.UserAgent(l.persona.UserAgent),
	)

	if l.cfg.ExecPath != "" {
		out = append(out, chromedp.ExecPath(l.cfg.ExecPath))
	}

	for _, arg := range l.cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			out = append(out, chromedp.Flag(name, parts[1]))
		} else {
			out = append(out, chromedp.Flag(name, true))
		}
	}

	if runtime.GOOS == "linux" {
		out = append(out,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	return out
}

// chromeSession implements Session over a chromedp tab context.
type chromeSession struct {
	id          string
	tab         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger

	mu       sync.Mutex
	isClosed bool
}

var _ Session = (*chromeSession)(nil)

// seed imports the saved session state into the fresh context before the
// caller navigates anywhere. Cookies go in via CDP; localStorage is
// origin-scoped, so each stored origin is visited and its entries replayed.
func (s *chromeSession) seed(state *StorageState) error {
	if len(state.Cookies) > 0 {
		params := toCookieParams(state.Cookies)
		err := chromedp.Run(s.tab, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookies(params).Do(ctx)
		}))
		if err != nil {
			return fmt.Errorf("seed cookies: %w", err)
		}
	}

	for _, origin := range state.Origins {
		if len(origin.LocalStorage) == 0 {
			continue
		}
		script, err := localStorageSeedScript(origin.LocalStorage)
		if err != nil {
			return err
		}
		err = chromedp.Run(s.tab,
			chromedp.Navigate(origin.Origin),
			chromedp.Evaluate(script, nil),
		)
		if err != nil {
			return fmt.Errorf("seed localStorage for %s: %w", origin.Origin, err)
		}
	}
	return nil
}

func (s *chromeSession) Navigate(url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(s.tab, timeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) Location() (string, error) {
	var url string
	if err := chromedp.Run(s.tab, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

func (s *chromeSession) Content() (string, error) {
	var html string
	if err := chromedp.Run(s.tab, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return html, nil
}

func (s *chromeSession) Cookies() ([]Cookie, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(s.tab, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	return fromNetworkCookies(cookies), nil
}

func (s *chromeSession) ExportState() (*StorageState, error) {
	cookies, err := s.Cookies()
	if err != nil {
		return nil, err
	}

	state := &StorageState{Cookies: cookies}

	// localStorage only exists relative to the current origin; capture what
	// the final page left behind. Failure here loses convenience data, not
	// authentication, so it is not fatal.
	var origin string
	var entries map[string]string
	err = chromedp.Run(s.tab,
		chromedp.Evaluate(`window.location.origin`, &origin),
		chromedp.Evaluate(`({...localStorage})`, &entries),
	)
	if err != nil {
		s.logger.Warn("Could not capture localStorage for session blob", zap.Error(err))
		return state, nil
	}
	if origin != "" && origin != "null" && len(entries) > 0 {
		o := OriginState{Origin: origin}
		for k, v := range entries {
			o.LocalStorage = append(o.LocalStorage, StorageEntry{Name: k, Value: v})
		}
		state.Origins = append(state.Origins, o)
	}
	return state, nil
}

// release tears down contexts without the graceful wait. Used on launch
// failures before the session is handed out.
func (s *chromeSession) release() {
	s.tabCancel()
	s.allocCancel()
}

func (s *chromeSession) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.tabCancel()
	s.allocCancel()

	// Wait for the tab context to confirm termination, respecting the
	// caller's deadline.
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	select {
	case <-s.tab.Done():
		s.logger.Debug("Browser session closed")
	case <-waitCtx.Done():
		s.logger.Warn("Deadline exceeded waiting for browser session to close", zap.Error(waitCtx.Err()))
	}
	return nil
}
