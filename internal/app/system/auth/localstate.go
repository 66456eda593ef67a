package auth

import (
	"net/http"
)

// Preferences is device-local state kept in the session cookie. It is best
// effort and never authoritative.
type Preferences struct {
	LastProjectID string `json:"lastProjectId"`
	CookieConsent bool   `json:"cookieConsent"`
}

// Preferences reads the preferences stored in the session.
func (sm *SessionManager) Preferences(r *http.Request) Preferences {
	sess := sm.GetSession(r)
	return Preferences{
		LastProjectID: getString(sess, lastProjectKey),
		CookieConsent: getBool(sess, cookieConsent),
	}
}

// SavePreferences writes p to the session.
func (sm *SessionManager) SavePreferences(w http.ResponseWriter, r *http.Request, p Preferences) error {
	sess := sm.GetSession(r)
	if p.LastProjectID == "" {
		delete(sess.Values, lastProjectKey)
	} else {
		sess.Values[lastProjectKey] = p.LastProjectID
	}
	sess.Values[cookieConsent] = p.CookieConsent
	return sess.Save(r, w)
}

// SetPendingInvite remembers an invitation token opened by an anonymous
// visitor so it can be accepted right after sign-in.
func (sm *SessionManager) SetPendingInvite(w http.ResponseWriter, r *http.Request, token string) error {
	sess := sm.GetSession(r)
	sess.Values[pendingInvite] = token
	return sess.Save(r, w)
}

// TakePendingInvite returns and clears the pending invitation token.
func (sm *SessionManager) TakePendingInvite(w http.ResponseWriter, r *http.Request) (string, error) {
	sess := sm.GetSession(r)
	token := getString(sess, pendingInvite)
	if token == "" {
		return "", nil
	}
	delete(sess.Values, pendingInvite)
	return token, sess.Save(r, w)
}
