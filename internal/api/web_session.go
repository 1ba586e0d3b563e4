package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simmerapp/simmer-server/internal/service"
)

// setSessionCookies stores a fresh token pair for the pages.
// The access cookie lives as long as the token; the refresh cookie as long as the session.
func (s *Server) setSessionCookies(w http.ResponseWriter, session service.SessionResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   session.ExpiresIn,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    session.RefreshToken,
		Path:     "/",
		Expires:  session.RefreshExpiresAt,
		MaxAge:   int(time.Until(session.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// refreshPageSession rotates the token pair when the access cookie has expired
// but the refresh cookie is still good. A failed rotation clears both cookies
// and the request continues anonymously.
func (s *Server) refreshPageSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if optionalUserID(r.Context()) != "" {
			next.ServeHTTP(w, r)
			return
		}

		c, err := r.Cookie(refreshCookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		resp, err := s.services.Auth.RefreshTokens(r.Context(), service.RefreshRequest{
			RefreshToken: c.Value,
			Client:       clientFromContext(r.Context()),
		})
		if err != nil {
			s.logger.Debug("page session refresh failed", "error", err)
			s.clearSessionCookies(w)
			next.ServeHTTP(w, r)
			return
		}

		s.setSessionCookies(w, resp.SessionResponse)
		ctx := setIdentity(r.Context(), resp.User.ID, resp.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSignIn redirects anonymous visitors to the login page, remembering where they were going.
func requireSignIn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if optionalUserID(r.Context()) == "" {
			target := r.URL.RequestURI()
			if r.Method != http.MethodGet {
				target = r.Referer()
			}
			http.Redirect(w, r, "/login?next="+url.QueryEscape(safeRedirect(target)), http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// safeRedirect keeps redirects on this site. Anything that is not a plain
// absolute path falls back to the dashboard.
func safeRedirect(target string) string {
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		target = u.RequestURI()
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/dashboard"
	}
	return target
}
