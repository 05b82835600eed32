package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
	"joblink/api/internal/utils"
)

var parseJWT = func(tokenStr string, keyFunc jwt.Keyfunc) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, keyFunc)
}

var (
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
)

// contextKey avoids collisions with other packages' context values.
type contextKey string

const subjectKey contextKey = "subject_uid"

// WithSubject returns a context carrying the verified subject id. The
// gate attaches it after verification; tests use it to simulate one.
func WithSubject(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, subjectKey, uid)
}

// SubjectUID returns the verified identity-provider subject id attached
// by the gate. Handlers re-fetch the User record as needed; the full
// document is never stored on the context.
func SubjectUID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(subjectKey).(string)
	return uid, ok
}

// UserResolver maps a verified subject id to the local User record.
type UserResolver interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
}

// Gate verifies bearer credentials and enforces role membership.
type Gate struct {
	Users  UserResolver
	Secret string
}

func NewGate(users UserResolver, secret string) *Gate {
	return &Gate{Users: users, Secret: secret}
}

// verify validates the bearer token and returns the subject id.
func (g *Gate) verify(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", ErrMissingAuthHeader
	}
	tokenStr := strings.TrimPrefix(authz, "Bearer ")

	token, err := parseJWT(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(g.Secret), nil
	})
	if err != nil {
		// expired tokens are signalled distinctly so the client knows
		// to force a logout
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidClaims
	}
	return sub, nil
}

func (g *Gate) reject(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		utils.Error(w, http.StatusForbidden, "no_token", "No token provided")
	case errors.Is(err, ErrTokenExpired):
		// the token_expired code tells the client to drop its session
		utils.Error(w, http.StatusUnauthorized, "token_expired", "Token expired, please log in again")
	default:
		utils.Error(w, http.StatusForbidden, "invalid_token", "Invalid token")
	}
}

// RequireRoles passes requests whose verified identity resolves to a
// local User with one of the allowed roles. An empty allowed set admits
// any verified, registered identity.
func (g *Gate) RequireRoles(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := g.verify(r)
			if err != nil {
				g.reject(w, err)
				return
			}

			user, err := g.Users.GetByUID(r.Context(), uid)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					utils.Error(w, http.StatusForbidden, "unknown_user", "User not registered")
					return
				}
				utils.Error(w, http.StatusInternalServerError, "internal_error", "Failed to resolve user")
				return
			}

			if len(allowed) > 0 && !roleIn(user.Role, allowed) {
				utils.Error(w, http.StatusForbidden, "forbidden", "Forbidden")
				return
			}

			ctx := WithSubject(r.Context(), uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AllowSignup passes any verified identity, registered locally or not.
// Used by the signup-completion route, which creates the User record.
func (g *Gate) AllowSignup() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := g.verify(r)
			if err != nil {
				g.reject(w, err)
				return
			}
			ctx := WithSubject(r.Context(), uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleIn(role models.Role, set []models.Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}
