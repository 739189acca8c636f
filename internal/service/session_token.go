package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var errTokenInvalid = errors.New("token invalid")

// AdminClaims 后台 Token
type AdminClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// UserClaims 前台读者 Token
type UserClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// IssuedAtUnix 签发时间，缺失时为 0
func (c *AdminClaims) IssuedAtUnix() int64 { return issuedAtUnix(c.IssuedAt) }

// IssuedAtUnix 签发时间，缺失时为 0
func (c *UserClaims) IssuedAtUnix() int64 { return issuedAtUnix(c.IssuedAt) }

func issuedAtUnix(at *jwt.NumericDate) int64 {
	if at == nil {
		return 0
	}
	return at.Unix()
}

func registeredClaims(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func signHS256(secret string, claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseHS256(secret, raw string, claims jwt.Claims) error {
	if secret == "" {
		return errTokenInvalid
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errTokenInvalid
	}
	return nil
}

// ParseAdminToken 校验签名与有效期，吊销状态由调用方比对
func ParseAdminToken(secret, raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parseHS256(secret, raw, claims); err != nil {
		return nil, err
	}
	if claims.AdminID == 0 {
		return nil, errTokenInvalid
	}
	return claims, nil
}

// ParseUserToken 同 ParseAdminToken，面向读者
func ParseUserToken(secret, raw string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := parseHS256(secret, raw, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errTokenInvalid
	}
	return claims, nil
}

// HashPassword bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 校验明文与哈希
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func hoursOr(hours, fallback int) time.Duration {
	if hours <= 0 {
		hours = fallback
	}
	return time.Duration(hours) * time.Hour
}
