package token

import (
	"github.com/dharohar/dharohar/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded, trusted payload of a session token. Email is
// carried for display and audit only; Sub and Role are the trust
// anchors.
type Claims struct {
	Sub   string    `json:"sub"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
	jwt.RegisteredClaims
}
