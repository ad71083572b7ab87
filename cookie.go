package authcore

import (
	"net/http"
	"time"
)

// CookieDirective instructs the boundary layer how to set or clear the
// refresh-token cookie. The core never reads cookie headers itself; it
// receives the extracted token string and returns this directive.
type CookieDirective struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   int // seconds; -1 clears the cookie
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// HTTPCookie converts the directive to a *http.Cookie.
func (d CookieDirective) HTTPCookie() *http.Cookie {
	c := &http.Cookie{
		Name:     d.Name,
		Value:    d.Value,
		Path:     d.Path,
		Domain:   d.Domain,
		MaxAge:   d.MaxAge,
		Secure:   d.Secure,
		HttpOnly: d.HttpOnly,
		SameSite: d.SameSite,
	}
	if d.MaxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// RefreshCookie builds the set-cookie directive for a freshly issued
// refresh token. Always HttpOnly; Secure and SameSite come from config.
func (m *Manager) RefreshCookie(value string) CookieDirective {
	return CookieDirective{
		Name:     m.config.Cookie.Name,
		Value:    value,
		Path:     m.config.Cookie.Path,
		Domain:   m.config.Cookie.Domain,
		MaxAge:   int(m.config.Token.RefreshTTL / time.Second),
		Secure:   m.config.Cookie.Secure,
		HttpOnly: true,
		SameSite: m.config.Cookie.SameSite,
	}
}

// ClearCookie builds the directive that expires the refresh cookie
// immediately, used on logout.
func (m *Manager) ClearCookie() CookieDirective {
	return CookieDirective{
		Name:     m.config.Cookie.Name,
		Value:    "",
		Path:     m.config.Cookie.Path,
		Domain:   m.config.Cookie.Domain,
		MaxAge:   -1,
		Secure:   m.config.Cookie.Secure,
		HttpOnly: true,
		SameSite: m.config.Cookie.SameSite,
	}
}
