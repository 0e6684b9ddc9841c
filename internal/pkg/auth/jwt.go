/**
 * 工具类:JWT工具
 * @description: 访问令牌的签发与校验(HS256)，刷新令牌为不透明随机串，由令牌存储管理
 * @func:
 * 	1.签发访问令牌
 * 	2.校验访问令牌
 * 	3.生成刷新令牌
 */

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rbacmaster/internal/model/system"

	"github.com/golang-jwt/jwt/v5" // 引入jwt包
	"github.com/google/uuid"
)

// refreshTokenBytes 刷新令牌随机字节数
const refreshTokenBytes = 32

// JWTClaims JWT声明结构
type JWTClaims struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"` // 角色编码
	jwt.RegisteredClaims
}

// Remaining 令牌剩余有效期，已过期返回 0
func (c *JWTClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey       []byte
	issuer          string
	audience        string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey, issuer, audience string, accessTokenTTL, refreshTokenTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       []byte(secretKey),
		issuer:          issuer,
		audience:        audience,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		now:             time.Now,
	}
}

// AccessTokenTTL 访问令牌有效期
func (j *JWTManager) AccessTokenTTL() time.Duration { return j.accessTokenTTL }

// RefreshTokenTTL 刷新令牌有效期
func (j *JWTManager) RefreshTokenTTL() time.Duration { return j.refreshTokenTTL }

// GenerateAccessToken 生成访问令牌，返回令牌与 jti
func (j *JWTManager) GenerateAccessToken(userID uint, username string, roles []string) (string, string, error) {
	now := j.now()
	jti := uuid.NewString()
	claims := &JWTClaims{
		UserID:   userID,
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Audience:  []string{j.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, jti, nil
}

// ValidateAccessToken 验证访问令牌
// 过期返回 system.ErrTokenExpired，其他校验失败返回 system.ErrTokenInvalid
func (j *JWTManager) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, system.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", system.ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, system.ErrTokenInvalid
	}
	return claims, nil
}

// GenerateRefreshToken 生成刷新令牌(32字节随机数的 base64)
func (j *JWTManager) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ExtractTokenFromHeader 从Authorization头中提取令牌
func ExtractTokenFromHeader(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
