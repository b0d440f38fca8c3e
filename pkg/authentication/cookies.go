// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"
	"time"
)

const TokenHeader = "X-Session-Token"

// Cookies writes the browser side of a session. The session cookie lives as long
// as the browser, the remember-me cookie carries the same token for RememberTTL.
type Cookies struct {
	Name        string
	Secure      bool
	RememberTTL time.Duration
}

func (c *Cookies) rememberName() string {
	return c.Name + "_remember"
}

func (c *Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Set writes the session cookie and, when remember is true, the long-lived one.
func (c *Cookies) Set(w http.ResponseWriter, token string, remember bool) {
	http.SetCookie(w, c.cookie(c.Name, token, 0))

	if remember {
		http.SetCookie(w, c.cookie(c.rememberName(), token, int(c.RememberTTL.Seconds())))
	}
}

// Clear expires both cookies on the client.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(c.Name, "", -1))
	http.SetCookie(w, c.cookie(c.rememberName(), "", -1))
}

// Read returns the token from the session cookie, falling back to the remember-me
// cookie. remembered reports whether the remember-me cookie is present.
func (c *Cookies) Read(r *http.Request) (token string, remembered bool) {
	if rc, err := r.Cookie(c.rememberName()); err == nil && rc.Value != "" {
		token = rc.Value
		remembered = true
	}

	if sc, err := r.Cookie(c.Name); err == nil && sc.Value != "" {
		token = sc.Value
	}

	return token, remembered
}

func NewCookies(name string, secure bool, rememberTTL time.Duration) *Cookies {
	c := new(Cookies)

	c.Name = name
	c.Secure = secure
	c.RememberTTL = rememberTTL

	return c
}
