package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/permsysbackend/repository"
	"github.com/camden-git/permsysbackend/services"
)

type AuthHandler struct {
	UserRepo      repository.UserRepository
	Resolver      *services.PermissionResolver
	Secret        []byte
	TokenTTL      time.Duration
	SecureCookies bool
}

func NewAuthHandler(userRepo repository.UserRepository, resolver *services.PermissionResolver, secret []byte, tokenTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		UserRepo:      userRepo,
		Resolver:      resolver,
		Secret:        secret,
		TokenTTL:      tokenTTL,
		SecureCookies: secureCookies,
	}
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is the identity body returned by login and /me.
type SessionResponse struct {
	ID          uint                       `json:"id"`
	Username    string                     `json:"username"`
	Group       *string                    `json:"group"`
	Permissions []services.PermissionState `json:"permissions"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Username == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.UserRepo.GetByUsername(payload.Username)
	if err != nil {
		// same response as a bad password so usernames can't be probed
		WriteAPIError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.CheckPassword(payload.Password) {
		WriteAPIError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	expiresAt := time.Now().Add(h.TokenTTL)
	claims := &SessionClaims{
		Username: user.Username,
		GroupID:  user.PermissionGroupID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "permsysbackend",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.Secret)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(h.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	group, permissions, err := h.Resolver.ResolveUser(user)
	if err != nil {
		logrus.WithError(err).WithField("username", user.Username).Error("failed to resolve permissions at login")
		WriteAPIError(w, http.StatusInternalServerError, "Failed to resolve permissions")
		return
	}

	WriteJSON(w, http.StatusOK, SessionResponse{
		ID:          user.ID,
		Username:    user.Username,
		Group:       group,
		Permissions: permissions,
	})
}

// Logout clears the session cookie. The token itself stays valid until its
// expiry; there is no server-side revocation for self-contained tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the current identity with its resolved permission set. The
// /api/auth subtree sits outside the auth gate, so the token is checked here.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := parseSessionToken(r, h.Secret)
	if err != nil {
		if err == http.ErrNoCookie {
			WriteAPIError(w, http.StatusUnauthorized, "Not authenticated")
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

	user, err := h.UserRepo.GetByID(identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// user deleted after the token was issued
			WriteAPIError(w, http.StatusNotFound, "User not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	group, permissions, err := h.Resolver.ResolveUser(user)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to resolve permissions")
		return
	}

	WriteJSON(w, http.StatusOK, SessionResponse{
		ID:          user.ID,
		Username:    user.Username,
		Group:       group,
		Permissions: permissions,
	})
}
