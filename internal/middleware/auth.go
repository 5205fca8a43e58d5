package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

type contextKey string

const (
	AccountIDKey contextKey = "account_id"
	RoleKey      contextKey = "role"
	RequestIDKey contextKey = "request_id"
)

const tokenTTL = 7 * 24 * time.Hour

func GenerateToken(accountID int64, email string, role domain.Role, secret string) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountID,
		"email":      email,
		"role":       string(role),
		"exp":        time.Now().Add(tokenTTL).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AccountLookup resolves the account a token was issued to. A nil account
// with a nil error means the account no longer exists.
type AccountLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}

// AuthMiddleware verifies the bearer token and loads its account on every
// request, so deleted accounts lose access at once and the role always comes
// from the store rather than the token.
func AuthMiddleware(secret string, accounts AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if tokenStr == header {
				writeError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			accountIDFloat, ok := claims["account_id"].(float64)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid account id in token")
				return
			}
			accountID := int64(accountIDFloat)

			account, err := accounts.GetByID(r.Context(), accountID)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Int64("account_id", accountID).Msg("account lookup failed")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if account == nil {
				writeError(w, http.StatusUnauthorized, "account no longer exists")
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDKey, account.ID)
			ctx = context.WithValue(ctx, RoleKey, account.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFrom(r.Context()) != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func AccountIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(AccountIDKey).(int64)
	return id, ok
}

func RoleFrom(ctx context.Context) domain.Role {
	role, _ := ctx.Value(RoleKey).(domain.Role)
	return role
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
