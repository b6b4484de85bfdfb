// File: internal/platform/detector.go
package platform

import "strings"

// LoginDetector decides whether a browser state looks authenticated.
// Implementations inspect the current URL and, when that is not enough,
// the rendered page content.
type LoginDetector interface {
	// Authenticated reports whether the given URL and page content look
	// like a logged-in state. An empty content string means no content
	// was captured and only the URL should be judged.
	Authenticated(url, content string) bool
}

// loginKeywords mark URLs that are (or redirect to) a login page. The set
// includes localized variants and TikTok's logged-out "foryou" feed route.
var loginKeywords = []string{"login", "signin", "auth", "登录", "foryou"}

// urlKeywordDetector is the default detector: a session is considered
// authenticated as long as the current URL does not look like a login page.
type urlKeywordDetector struct{}

func (urlKeywordDetector) Authenticated(url, _ string) bool {
	lowered := strings.ToLower(url)
	for _, kw := range loginKeywords {
		if strings.Contains(lowered, kw) {
			return false
		}
	}
	return true
}

// contentSniffDetector refines the URL check with a content scan. Some
// platforms serve the personal-center route to unauthenticated visitors and
// gate the content instead, so a plausible URL alone proves nothing.
type contentSniffDetector struct {
	phrases []string
}

func (d contentSniffDetector) Authenticated(url, content string) bool {
	if !(urlKeywordDetector{}).Authenticated(url, "") {
		return false
	}
	for _, p := range d.phrases {
		if strings.Contains(content, p) {
			return false
		}
	}
	return true
}

var defaultDetector LoginDetector = urlKeywordDetector{}

// detectors maps platform keys to their non-default detectors. Douyin renders
// its creator home for logged-out visitors with a login prompt in the body.
// The bare 登录 entry is broad on purpose: a miss here reports a dead session
// as live, which is the expensive direction.
var detectors = map[string]LoginDetector{
	"douyin": contentSniffDetector{
		phrases: []string{"登录", "Sign in", "Log in", "登录/注册", "扫码登录"},
	},
}
