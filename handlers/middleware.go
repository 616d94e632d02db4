package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// IdentityContextKey is the key used to store the caller's identity in the
// request context.
const IdentityContextKey ContextKey = "identity"

// SessionCookieName carries the signed session token.
const SessionCookieName = "auth_token"

// SessionClaims is the JWT payload minted at login.
type SessionClaims struct {
	Username string `json:"username"`
	GroupID  *uint  `json:"groupId"`
	jwt.RegisteredClaims
}

// Identity is the decoded caller attached to authenticated requests.
type Identity struct {
	UserID   uint
	Username string
	GroupID  *uint
}

// parseSessionToken verifies the session cookie and returns its claims.
func parseSessionToken(r *http.Request, secret []byte) (*SessionClaims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func identityFromClaims(claims *SessionClaims) (*Identity, error) {
	var userID uint
	if _, err := fmt.Sscan(claims.Subject, &userID); err != nil {
		return nil, fmt.Errorf("invalid subject %q in session token: %w", claims.Subject, err)
	}
	return &Identity{UserID: userID, Username: claims.Username, GroupID: claims.GroupID}, nil
}

// AuthMiddleware rejects requests without a valid session cookie and attaches
// the decoded identity to the request context. Login, logout, setup, and the
// export surface sit outside this gate by route placement.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseSessionToken(r, secret)
			if err != nil {
				if err == http.ErrNoCookie {
					WriteAPIError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				WriteAPIError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			identity, err := identityFromClaims(claims)
			if err != nil {
				WriteAPIError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok && identity != nil
}
