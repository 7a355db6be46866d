package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/featvid/featvid/internal/database"
	"github.com/featvid/featvid/internal/httputil"
)

// RoleAdmin is the elevated capability required by the floating-video
// management endpoints.
const RoleAdmin = "admin"

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

type Handler struct {
	db            database.DBTX
	jwtSecret     string
	secureCookies bool
}

func NewHandler(db database.DBTX, jwtSecret string, secureCookies bool) *Handler {
	return &Handler{db: db, jwtSecret: jwtSecret, secureCookies: secureCookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var userID, hashedPassword, role string
	err := h.db.QueryRow(r.Context(),
		"SELECT id, password, role FROM users WHERE email = $1", req.Email,
	).Scan(&userID, &hashedPassword, &role)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(r.Context(), userID, role)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	h.setRefreshTokenCookie(w, refreshToken)
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "refresh token not found")
		return
	}

	claims, err := ValidateToken(h.jwtSecret, cookie.Value)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if claims.TokenType != "refresh" || claims.TokenID == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if err := h.validateStoredRefreshToken(r.Context(), claims.UserID, claims.TokenID); err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if err := h.revokeRefreshToken(r.Context(), claims.TokenID); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to revoke refresh token")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(r.Context(), claims.UserID, claims.Role)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	h.setRefreshTokenCookie(w, refreshToken)
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		if claims, err := ValidateToken(h.jwtSecret, cookie.Value); err == nil && claims.TokenType == "refresh" && claims.TokenID != "" {
			_ = h.revokeRefreshToken(r.Context(), claims.TokenID)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteErrorCode(w, http.StatusUnauthorized, "unauthorized", "authorization header required")
			return
		}

		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			httputil.WriteErrorCode(w, http.StatusUnauthorized, "unauthorized", "invalid authorization header format")
			return
		}

		claims, err := ValidateToken(h.jwtSecret, tokenStr)
		if err != nil {
			httputil.WriteErrorCode(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		if claims.TokenType != "access" {
			httputil.WriteErrorCode(w, http.StatusUnauthorized, "unauthorized", "invalid token type")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, roleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after Middleware. Non-admin tokens get a 403 with
// the stable "forbidden" code.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != RoleAdmin {
			httputil.WriteErrorCode(w, http.StatusForbidden, "forbidden", "you do not have permission to manage floating videos")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

func (h *Handler) setRefreshTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(RefreshTokenDuration / time.Second),
	})
}

func (h *Handler) issueTokens(ctx context.Context, userID, role string) (accessToken, refreshToken string, err error) {
	tokenID, err := newTokenID()
	if err != nil {
		return "", "", err
	}

	expiresAt := time.Now().Add(RefreshTokenDuration)
	if _, err := h.db.Exec(ctx, "INSERT INTO refresh_tokens (token_id, user_id, expires_at, revoked) VALUES ($1, $2, $3, false)", tokenID, userID, expiresAt); err != nil {
		return "", "", err
	}

	accessToken, err = GenerateAccessToken(h.jwtSecret, userID, role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = GenerateRefreshToken(h.jwtSecret, userID, role, tokenID)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (h *Handler) validateStoredRefreshToken(ctx context.Context, userID, tokenID string) error {
	var revoked bool
	var expiresAt time.Time
	err := h.db.QueryRow(ctx, "SELECT revoked, expires_at FROM refresh_tokens WHERE token_id = $1 AND user_id = $2", tokenID, userID).Scan(&revoked, &expiresAt)
	if err != nil {
		return err
	}
	if revoked || time.Now().After(expiresAt) {
		return errors.New("token revoked or expired")
	}
	return nil
}

func (h *Handler) revokeRefreshToken(ctx context.Context, tokenID string) error {
	_, err := h.db.Exec(ctx, "UPDATE refresh_tokens SET revoked = true, revoked_at = now() WHERE token_id = $1", tokenID)
	return err
}

func newTokenID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
