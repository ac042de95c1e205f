package service

import (
	"Abridge_1.0/backend/go/internal/config"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// 令牌类型，写入 "type" claim，防止 refresh 令牌被当作 access 令牌使用。
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// ErrInvalidToken 表示令牌无效、过期或类型不符。
var ErrInvalidToken = errors.New("Token is invalid or expired")

// now 便于在测试中替换。
var now = time.Now

// TokenPair 是登录成功后返回的令牌对。
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenIssuer 负责签发和校验 HS256 JWT。
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer 根据认证配置创建 TokenIssuer。
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(cfg.JwtSecret),
		issuer:     cfg.Issuer,
		accessTTL:  config.Duration(cfg.AccessTTL, 5*time.Minute),
		refreshTTL: config.Duration(cfg.RefreshTTL, 24*time.Hour),
	}
}

// IssuePair 为用户签发 access 和 refresh 令牌。
func (t *TokenIssuer) IssuePair(userID uint) (*TokenPair, error) {
	access, err := t.Issue(userID, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := t.Issue(userID, TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Issue 为指定用户 ID 签发一个指定类型的令牌。
func (t *TokenIssuer) Issue(userID uint, tokenType string) (string, error) {
	ttl := t.accessTTL
	if tokenType == TokenRefresh {
		ttl = t.refreshTTL
	}
	issuedAt := now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": tokenType,
		"iss":  t.issuer,
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, nil
}

// Parse 校验令牌签名、有效期、签发者和类型，返回用户 ID。
func (t *TokenIssuer) Parse(tokenString, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("非预期的签名方法")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if t.issuer != "" && !claims.VerifyIssuer(t.issuer, true) {
		return 0, ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != wantType {
		return 0, ErrInvalidToken
	}
	// JWT 解析数字时默认为 float64
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(sub), nil
}
