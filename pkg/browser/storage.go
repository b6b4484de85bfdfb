// File: pkg/browser/storage.go
package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

// Cookie is the serialized form of a browser cookie inside a session blob.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// OriginState carries localStorage entries for one origin.
type OriginState struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// StorageEntry is a single key/value pair of web storage.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StorageState is the serialized authentication state of a browser context:
// cookies plus per-origin localStorage. The JSON layout matches the storage
// blobs written by the previous publishing backend, so existing cookiesFile
// entries stay importable.
type StorageState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins"`
}

// CookieNames returns the set of cookie names present in the state.
func (s *StorageState) CookieNames() []string {
	names := make([]string, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		names = append(names, c.Name)
	}
	return names
}

// WriteFile serializes the state to path, creating parent directories as
// needed. An existing file is overwritten: re-login replaces the session.
func (s *StorageState) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write storage state: %w", err)
	}
	return nil
}

// ReadStorageState loads and parses a session blob from disk.
func ReadStorageState(path string) (*StorageState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storage state: %w", err)
	}
	var state StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse storage state %s: %w", filepath.Base(path), err)
	}
	return &state, nil
}

// localStorageSeedScript renders a script that replays stored localStorage
// entries into the current origin. Entries travel as a JSON object literal so
// keys and values need no escaping of their own.
func localStorageSeedScript(entries []StorageEntry) (string, error) {
	kv := make(map[string]string, len(entries))
	for _, e := range entries {
		kv[e.Name] = e.Value
	}
	payload, err := json.Marshal(kv)
	if err != nil {
		return "", fmt.Errorf("encode localStorage entries: %w", err)
	}
	script := fmt.Sprintf(
		`(() => { const entries = %s; for (const [k, v] of Object.entries(entries)) { localStorage.setItem(k, v); } })()`,
		payload,
	)
	return script, nil
}

// fromNetworkCookies converts CDP cookies into the serialized form.
func fromNetworkCookies(cookies []*network.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

// toCookieParams converts serialized cookies into CDP set-cookie parameters.
func toCookieParams(cookies []Cookie) []*network.CookieParam {
	out := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != "" {
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			t := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &t
		}
		out = append(out, p)
	}
	return out
}
