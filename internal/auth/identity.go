package auth

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the caller extracted from a verified access token.
type Identity struct {
	UserID   uint
	Role     models.Role
	ClientID string
	Scope    string
}

// Authenticate verifies an HMAC-signed bearer token and returns the identity
// it carries. Every failure is an UnauthorizedError.
func Authenticate(token string, secret []byte) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperrors.NewUnauthorizedError("bearer token is empty")
	}

	claims, err := parseAndValidateJWT(token, secret)
	if err != nil {
		return Identity{}, apperrors.NewUnauthorizedError(err.Error())
	}

	identity, err := identityFromClaims(claims)
	if err != nil {
		return Identity{}, apperrors.NewUnauthorizedError(err.Error())
	}
	return identity, nil
}

// Authorize passes the identity through when it holds the required role.
func Authorize(identity Identity, required models.Role) (Identity, error) {
	if identity.Role != required {
		return Identity{}, apperrors.NewForbiddenError(
			fmt.Sprintf("role %s is required for this operation", required))
	}
	return identity, nil
}

// IssueToken signs an access token for a logged-in user.
func IssueToken(secret []byte, userID uint, role models.Role, ttl time.Duration) (string, time.Time, error) {
	if userID == 0 {
		return "", time.Time{}, fmt.Errorf("cannot issue token: user id is zero")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("cannot issue token: invalid role %q", role)
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  strconv.FormatUint(uint64(userID), 10),
		"role": string(role),
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func parseJWTToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}
	return claims, nil
}

// parseAndValidateJWT parses the token and checks its time claims
func parseAndValidateJWT(tokenString string, secret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, secret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token missing required 'exp' claim")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("token not yet valid")
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	userID, err := extractUserID(claims)
	if err != nil {
		return Identity{}, err
	}
	if userID == 0 {
		return Identity{}, fmt.Errorf("invalid user identifier: cannot be zero")
	}

	role, err := extractRole(claims)
	if err != nil {
		return Identity{}, err
	}

	identity := Identity{UserID: userID, Role: role}

	if aud, ok := claims["aud"].(string); ok && aud != "" {
		identity.ClientID = aud
	} else if audArray, ok := claims["aud"].([]interface{}); ok && len(audArray) > 0 {
		if first, ok := audArray[0].(string); ok {
			identity.ClientID = first
		}
	}
	if scope, ok := claims["scope"].(string); ok {
		identity.Scope = scope
	}

	return identity, nil
}

// extractUserID reads the "uid" claim, as a numeric string or a JSON number
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsedID, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		return uint(parsedID), nil
	}

	if uid, ok := claims["uid"].(float64); ok {
		if uid <= 0 || uid > math.MaxUint32 || uid != math.Trunc(uid) {
			return 0, fmt.Errorf("invalid uid claim: must be a positive integer, got: %v", uid)
		}
		return uint(uid), nil
	}

	return 0, fmt.Errorf("token missing required 'uid' claim")
}

func extractRole(claims jwt.MapClaims) (models.Role, error) {
	raw, ok := claims["role"].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("token missing required 'role' claim")
	}

	role := models.Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role '%s'. Allowed roles: %s, %s", raw, models.RoleClient, models.RoleEmployee)
	}
	return role, nil
}
