package session

import (
	"net/http"

	"github.com/dharohar/dharohar/internal/token"
	"github.com/dharohar/dharohar/internal/user"
	"go.uber.org/zap"
)

// Manager orchestrates the session lifecycle: creation at login or
// signup, retrieval on every protected request, sliding renewal at the
// gateway, and destruction at logout. The signed cookie is the entire
// session state; there is no server-side session table.
type Manager struct {
	codec  *token.Codec
	store  *CookieStore
	logger *zap.Logger
}

func NewManager(codec *token.Codec, store *CookieStore, logger *zap.Logger) *Manager {
	return &Manager{codec: codec, store: store, logger: logger}
}

// Create issues a session for an authenticated principal. Callers must
// verify credentials before calling this; it trusts its arguments.
func (m *Manager) Create(w http.ResponseWriter, subjectID, email string, role user.Role) error {
	tok, err := m.codec.Encode(subjectID, email, role)
	if err != nil {
		m.logger.Error("failed to sign session token", zap.Error(err))
		return err
	}
	m.store.Write(w, tok)
	return nil
}

// FromRequest returns the request's session claims, or nil when the
// cookie is absent, expired, or fails verification. Expiry and forgery
// are deliberately indistinguishable to callers.
func (m *Manager) FromRequest(r *http.Request) *token.Claims {
	raw, ok := m.store.Read(r)
	if !ok {
		return nil
	}
	claims := m.codec.Decode(raw)
	if claims == nil {
		m.logger.Debug("rejected session token", zap.String("remote", r.RemoteAddr))
	}
	return claims
}

// Destroy clears the session cookie. Idempotent; calling it with no
// session is not an error.
func (m *Manager) Destroy(w http.ResponseWriter) {
	m.store.Clear(w)
}

// Refresh re-signs the request's claims with a fresh validity window
// and sets the renewed cookie, implementing "stay logged in while
// active". Returns false without touching the response when there is
// nothing valid to renew.
func (m *Manager) Refresh(r *http.Request, w http.ResponseWriter) bool {
	claims := m.FromRequest(r)
	if claims == nil {
		return false
	}
	tok, err := m.codec.Encode(claims.Sub, claims.Email, claims.Role)
	if err != nil {
		m.logger.Error("failed to re-sign session token", zap.Error(err))
		return false
	}
	m.store.Write(w, tok)
	return true
}
