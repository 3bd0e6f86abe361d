package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"medray-api/internal/converter"
	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
	"medray-api/internal/domain/repository"
	"medray-api/internal/infrastructure/cache"
	"medray-api/internal/infrastructure/database"
	"medray-api/internal/infrastructure/mail"
	"medray-api/internal/service"
	"medray-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const emailUniqueConstraint = "uq_users_email"

// maxResetAttempts wrong guesses burn the outstanding reset code.
const maxResetAttempts = 5

var (
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrUserNotFound         = errors.New("user not found")
	ErrResetRequestNotFound = errors.New("no password reset request found")
	ErrInvalidResetCode     = errors.New("invalid or expired reset code")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, identity entity.Identity, accessTokenID string, req *dto.LogoutRequest) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ResetCodeSentResponse, error)
	VerifyResetCode(ctx context.Context, req *dto.VerifyResetCodeRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

type authUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	mailer       mail.Mailer
	resetCodeTTL time.Duration
	generateCode func() (string, error)
}

func NewAuthUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	mailer mail.Mailer,
	resetCodeTTL time.Duration,
) AuthUsecase {
	return &authUsecase{
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
		jwtService:   jwtService,
		redisClient:  redisClient,
		mailer:       mailer,
		resetCodeTTL: resetCodeTTL,
		generateCode: generateResetCode,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	role := entity.Role(req.Role)
	user := &entity.User{
		Name:             strings.TrimSpace(req.Name),
		Email:            normalizeEmail(req.Email),
		Password:         string(hashedPassword),
		Age:              req.Age,
		Gender:           req.Gender,
		PhoneNumber:      req.PhoneNumber,
		MedicalCondition: req.MedicalCondition,
		Role:             role,
	}
	if role == entity.RoleDoctor {
		user.Specialty = req.Specialty
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err, emailUniqueConstraint) {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = u.auditService.LogCreate(ctx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	return &dto.RegisterResponse{
		User:          converter.UserToResponse(user),
		TokenResponse: *tokens,
	}, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = u.auditService.LogEvent(ctx, &user.ID, entity.AuditActionUserLogin, entity.JSON{"email": user.Email})

	return &dto.LoginResponse{
		User:      converter.UserToResponse(user),
		Tokens:    tokens,
		Dashboard: user.Role.Dashboard(),
	}, nil
}

// Logout revokes the presented access token and, when supplied, the caller's
// refresh token. Refresh tokens that belong to someone else are ignored.
func (u *authUsecase) Logout(ctx context.Context, identity entity.Identity, accessTokenID string, req *dto.LogoutRequest) error {
	keys := []string{cache.AccessTokenKey(identity.UserID, accessTokenID)}

	if req != nil && req.RefreshToken != "" {
		claims, err := u.jwtService.ValidateToken(req.RefreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == identity.UserID {
			keys = append(keys, cache.RefreshTokenKey(claims.UserID, claims.TokenID))
		}
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens from Redis: %+v", err)
		return err
	}

	_ = u.auditService.LogEvent(ctx, &identity.UserID, entity.AuditActionUserLogout, nil)

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are single use: deleting the key is the existence check.
	refreshKey := cache.RefreshTokenKey(claims.UserID, claims.TokenID)
	deleted, err := u.redisClient.Del(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ResetCodeSentResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	code, err := u.generateCode()
	if err != nil {
		u.log.Warnf("Failed to generate reset code: %+v", err)
		return nil, err
	}

	hashedCode, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash reset code: %+v", err)
		return nil, err
	}

	pipe := u.redisClient.TxPipeline()
	pipe.Set(ctx, cache.PasswordResetKey(email), hashedCode, u.resetCodeTTL)
	pipe.Del(ctx, cache.PasswordResetAttemptsKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		u.log.Warnf("Failed to store reset code in Redis: %+v", err)
		return nil, err
	}

	err = u.mailer.Send(ctx, mail.Message{
		To:      user.Email,
		Subject: "Your password reset code",
		Body: fmt.Sprintf("Hello %s,\n\nYour password reset code is %s. It expires in %d minutes.\n",
			user.Name, code, int(u.resetCodeTTL.Minutes())),
	})
	if err != nil {
		u.log.Warnf("Failed to send reset code: %+v", err)
		return nil, err
	}

	return &dto.ResetCodeSentResponse{
		Email:     user.Email,
		ExpiresIn: int64(u.resetCodeTTL.Seconds()),
	}, nil
}

func (u *authUsecase) VerifyResetCode(ctx context.Context, req *dto.VerifyResetCodeRequest) error {
	return u.checkResetCode(ctx, normalizeEmail(req.Email), req.Code)
}

func (u *authUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if err := u.checkResetCode(ctx, email, req.Code); err != nil {
		if errors.Is(err, ErrResetRequestNotFound) {
			return ErrInvalidResetCode
		}
		return err
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil {
		return ErrInvalidResetCode
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	if err := u.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return err
	}

	if err := u.redisClient.Del(ctx, cache.PasswordResetKey(email), cache.PasswordResetAttemptsKey(email)).Err(); err != nil {
		u.log.Warnf("Failed to delete reset code: %+v", err)
	}

	if err := u.RevokeAllUserTokens(ctx, user.ID); err != nil {
		return err
	}

	_ = u.auditService.LogEvent(ctx, &user.ID, entity.AuditActionPasswordReset, entity.JSON{"email": user.Email})

	return nil
}

// RevokeAllUserTokens revokes all tokens for a user (useful when password changed or account compromised)
func (u *authUsecase) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	for _, pattern := range []string{cache.AccessTokenPattern(userID), cache.RefreshTokenPattern(userID)} {
		keys, err := u.redisClient.Keys(ctx, pattern).Result()
		if err != nil {
			u.log.Warnf("Failed to get token keys: %+v", err)
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
			u.log.Warnf("Failed to delete tokens: %+v", err)
			return err
		}
	}

	return nil
}

func (u *authUsecase) checkResetCode(ctx context.Context, email, code string) error {
	hashedCode, err := u.redisClient.Get(ctx, cache.PasswordResetKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrResetRequestNotFound
		}
		u.log.Warnf("Failed to read reset code from Redis: %+v", err)
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(code)); err != nil {
		u.recordFailedResetAttempt(ctx, email)
		return ErrInvalidResetCode
	}
	return nil
}

func (u *authUsecase) recordFailedResetAttempt(ctx context.Context, email string) {
	attemptsKey := cache.PasswordResetAttemptsKey(email)

	pipe := u.redisClient.TxPipeline()
	incr := pipe.Incr(ctx, attemptsKey)
	pipe.Expire(ctx, attemptsKey, u.resetCodeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		u.log.Warnf("Failed to count reset attempt: %+v", err)
		return
	}

	if incr.Val() < maxResetAttempts {
		return
	}
	if err := u.redisClient.Del(ctx, cache.PasswordResetKey(email), attemptsKey).Err(); err != nil {
		u.log.Warnf("Failed to burn reset code: %+v", err)
	}
}

// issueTokens signs an access/refresh pair and registers both in Redis.
func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, cache.AccessTokenKey(user.ID, accessTokenID), "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, cache.RefreshTokenKey(user.ID, refreshTokenID), "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
