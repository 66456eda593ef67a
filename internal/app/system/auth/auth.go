// Package auth manages cookie sessions and the signed-in user carried in the
// request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey       = "is_authenticated"
	userIDKey       = "user_id"
	userNameKey     = "user_name"
	userEmailKey    = "user_email"
	userAdminKey    = "user_admin"
	pendingInvite   = "pending_invite"
	lastProjectKey  = "last_project"
	cookieConsent   = "cookie_consent"
	signedInAtKey   = "signed_in_at"
	defaultLoginURL = "/login"
)

// SessionUser is what we cache in the session and inject into r.Context().
type SessionUser struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}

// UserFetcher loads the current state of a signed-in user. Returning
// (nil, nil) means the user no longer may hold a session (deleted or banned)
// and the session is cleared.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error)
}

// UserFetcherFunc adapts a function to UserFetcher.
type UserFetcherFunc func(ctx context.Context, userID string) (*SessionUser, error)

func (f UserFetcherFunc) FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error) {
	return f(ctx, userID)
}

// SessionManager owns the cookie store. It is constructed once at startup
// and passed to the features that need it.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	log      *zap.Logger
	fetcher  UserFetcher
	LoginURL string
}

// NewSessionManager builds a cookie-backed session manager. In production
// (secure=true) cookies are Secure and SameSite=None; over plain http in
// development they are SameSite=Lax.
func NewSessionManager(key, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		return nil, errors.New("session key is empty; provide 32+ random chars")
	}
	if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}
	if name == "" {
		name = "campaignhub-session"
	}

	store := sessions.NewCookieStore([]byte(key))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger, LoginURL: defaultLoginURL}, nil
}

// SetUserFetcher installs the fetcher used by LoadSessionUser to refresh
// the cached user on every request.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// GetSession returns the session for r. A cookie that fails to decode yields
// a fresh session rather than an error.
func (sm *SessionManager) GetSession(r *http.Request) *sessions.Session {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sm.log.Debug("session decode failed; starting fresh", zap.Error(err))
	}
	return sess
}

// SignIn records u in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess := sm.GetSession(r)
	sess.Values[isAuthKey] = true
	sess.Values[signedInAtKey] = time.Now().Unix()
	setUser(sess, u)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SignOut removes the user from the session. The cookie-consent flag
// survives since it belongs to the device, not the account.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := sm.GetSession(r)
	clearUser(sess)
	delete(sess.Values, pendingInvite)
	delete(sess.Values, lastProjectKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSessionUser injects the signed-in user into the request context. With
// a fetcher installed the cached values are refreshed; a user the fetcher
// no longer recognizes is signed out. When the fetch fails the cached values
// are used so a database outage does not sign everyone out.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sm.GetSession(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:      getString(sess, userIDKey),
			Name:    getString(sess, userNameKey),
			Email:   getString(sess, userEmailKey),
			IsAdmin: getBool(sess, userAdminKey),
		}

		if sm.fetcher != nil {
			fresh, err := sm.fetcher.FetchSessionUser(r.Context(), u.ID)
			switch {
			case err != nil:
				sm.log.Warn("session user refresh failed; using cached values",
					zap.String("user_id", u.ID), zap.Error(err))
			case fresh == nil:
				sm.log.Info("session user no longer active; signing out", zap.String("user_id", u.ID))
				clearUser(sess)
				if err := sess.Save(r, w); err != nil {
					sm.log.Warn("failed to clear session", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			default:
				if *fresh != *u {
					setUser(sess, fresh)
					if err := sess.Save(r, w); err != nil {
						sm.log.Warn("failed to refresh session", zap.Error(err))
					}
				}
				u = fresh
			}
		}

		next.ServeHTTP(w, WithUser(r, u))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to the login page
//   - HTML: 303 redirect to the login page
//   - API:  401 with a JSON error body
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		sm.unauthorized(w, r)
	})
}

// RequireAdmin ensures the signed-in user is a system admin.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			sm.unauthorized(w, r)
			return
		}
		if !u.IsAdmin {
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/forbidden")
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if wantsHTML(r) {
				http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
				return
			}
			writeJSONError(w, http.StatusForbidden, "forbidden", "Administrator access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) unauthorized(w http.ResponseWriter, r *http.Request) {
	dest := sm.LoginURL + "?return=" + url.QueryEscape(r.URL.RequestURI())
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Sign in required.")
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// UserFromContext is CurrentUser for code holding only a context.
func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns r carrying u, as LoadSessionUser does. Tests use it to
// simulate a signed-in request.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func setUser(s *sessions.Session, u *SessionUser) {
	s.Values[userIDKey] = u.ID
	s.Values[userNameKey] = u.Name
	s.Values[userEmailKey] = u.Email
	s.Values[userAdminKey] = u.IsAdmin
}

func clearUser(s *sessions.Session) {
	for _, k := range []string{isAuthKey, userIDKey, userNameKey, userEmailKey, userAdminKey, signedInAtKey} {
		delete(s.Values, k)
	}
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func getBool(s *sessions.Session, key string) bool {
	v, _ := s.Values[key].(bool)
	return v
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%q,"message":%q,"kind":"permission"}}`, code, msg)
}
