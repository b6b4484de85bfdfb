// File: internal/session/mocks_test.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/nyxaris9/socialup-cli/pkg/browser"
)

// fakeSession is a scriptable browser.Session. Location consumes the urls
// slice one entry per call and then sticks on the last one, which lets a test
// model a login page that the operator eventually leaves.
type fakeSession struct {
	mu      sync.Mutex
	urls    []string
	urlIdx  int
	content string
	cookies []browser.Cookie
	state   *browser.StorageState

	navErr     error
	locErr     error
	contentErr error
	exportErr  error

	navigated []string
	closed    bool
}

func (s *fakeSession) Navigate(url string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.navErr != nil {
		return s.navErr
	}
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSession) Location() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locErr != nil {
		return "", s.locErr
	}
	if len(s.urls) == 0 {
		return "", nil
	}
	url := s.urls[s.urlIdx]
	if s.urlIdx < len(s.urls)-1 {
		s.urlIdx++
	}
	return url, nil
}

func (s *fakeSession) Content() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contentErr != nil {
		return "", s.contentErr
	}
	return s.content, nil
}

func (s *fakeSession) Cookies() ([]browser.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies, nil
}

func (s *fakeSession) ExportState() (*browser.StorageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	if s.state != nil {
		return s.state, nil
	}
	return &browser.StorageState{Cookies: s.cookies}, nil
}

func (s *fakeSession) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeBrowser hands out its configured session and records every launch.
type fakeBrowser struct {
	mu        sync.Mutex
	session   *fakeSession
	launchErr error
	launches  []browser.Options
}

func (b *fakeBrowser) Launch(_ context.Context, opts browser.Options) (browser.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	b.launches = append(b.launches, opts)
	return b.session, nil
}

func (b *fakeBrowser) launchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.launches)
}

func (b *fakeBrowser) lastLaunch() browser.Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launches[len(b.launches)-1]
}
