package middleware

import (
	"context"
	"net/http"
	"strings"

	"medray-api/internal/domain/entity"
	"medray-api/internal/infrastructure/cache"
	"medray-api/pkg/jwt"
	"medray-api/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	RoleKey      contextKey = "role"
	TokenIDKey   contextKey = "token_id"
)

type AuthMiddleware struct {
	log         *logrus.Logger
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthMiddleware(log *logrus.Logger, jwtService *jwt.JWTService, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		log:         log,
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		role := entity.Role(claims.Role)
		if !role.IsValid() {
			response.Unauthorized(w, "Invalid token")
			return
		}

		// Revoked tokens are removed from Redis on logout and password reset.
		exists, err := m.redisClient.Exists(r.Context(), cache.AccessTokenKey(claims.UserID, claims.TokenID)).Result()
		if err != nil {
			m.log.Warnf("Failed to check access token: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if exists == 0 {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		identity := entity.Identity{UserID: claims.UserID, Email: claims.Email, Role: role}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity, claims.TokenID)))
	})
}

func WithIdentity(ctx context.Context, identity entity.Identity, tokenID string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, identity.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, identity.Email)
	ctx = context.WithValue(ctx, RoleKey, identity.Role)
	return context.WithValue(ctx, TokenIDKey, tokenID)
}

// IdentityFromContext rebuilds the caller identity set by Authenticate.
func IdentityFromContext(ctx context.Context) (entity.Identity, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok {
		return entity.Identity{}, false
	}
	role, ok := ctx.Value(RoleKey).(entity.Role)
	if !ok {
		return entity.Identity{}, false
	}
	email, _ := ctx.Value(UserEmailKey).(string)

	return entity.Identity{UserID: userID, Email: email, Role: role}, true
}

func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// RequireRole rejects callers whose role is not listed. Must run after Authenticate.
func RequireRole(roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleDoctor)(next)
}
