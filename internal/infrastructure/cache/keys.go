package cache

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Redis key layout shared by the auth middleware, the auth usecase and the
// background jobs.

func AccessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID, tokenID)
}

func RefreshTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID, tokenID)
}

func AccessTokenPattern(userID uuid.UUID) string {
	return fmt.Sprintf("access_token:%s:*", userID)
}

func RefreshTokenPattern(userID uuid.UUID) string {
	return fmt.Sprintf("refresh_token:%s:*", userID)
}

func PasswordResetKey(email string) string {
	return "password_reset:" + strings.ToLower(strings.TrimSpace(email))
}

func PasswordResetAttemptsKey(email string) string {
	return "password_reset_attempts:" + strings.ToLower(strings.TrimSpace(email))
}

const RayRetryLockKey = "jobs:ray-retry:lock"
