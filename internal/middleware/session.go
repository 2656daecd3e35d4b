package middleware

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName        = "eventflow_session"
	checkoutSessionKey = "checkout_id"
)

// CheckoutSession keeps the visitor's checkout id in a signed cookie
type CheckoutSession struct {
	store sessions.Store
}

// NewCheckoutSession creates a cookie-backed session for checkout ids
func NewCheckoutSession(secret string, maxAge int, secure bool) *CheckoutSession {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CheckoutSession{store: store}
}

// NewCheckoutSessionWithStore wraps an existing store
func NewCheckoutSessionWithStore(store sessions.Store) *CheckoutSession {
	return &CheckoutSession{store: store}
}

// CheckoutID returns the checkout id stored in the session, or "".
// A cookie that fails to decode is treated as no session.
func (m *CheckoutSession) CheckoutID(r *http.Request) string {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	id, _ := session.Values[checkoutSessionKey].(string)
	return id
}

// SetCheckoutID stores the checkout id in the session cookie
func (m *CheckoutSession) SetCheckoutID(w http.ResponseWriter, r *http.Request, id string) error {
	// Get returns a fresh session alongside a decode error
	session, _ := m.store.Get(r, sessionName)
	session.Values[checkoutSessionKey] = id
	return session.Save(r, w)
}

// Clear removes the checkout id from the session
func (m *CheckoutSession) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	delete(session.Values, checkoutSessionKey)
	return session.Save(r, w)
}

// SecureHeaders adds security headers to responses
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only set HSTS for HTTPS
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
