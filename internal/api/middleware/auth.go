package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/feedgraph/pkg/response"
)

const viewerKey = "viewer_id"

// Claims 只使用标准字段，Subject 即用户 id
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken 签发 HS256 令牌。令牌签发属于外部认证服务，这里供测试和压测工具使用。
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", errors.New("missing bearer token")
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// AuthRequired 要求有效令牌，否则 401
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, err := parseToken(secret, c.GetHeader("Authorization"))
		if err != nil {
			response.Unauthorized(c, "unauthorized")
			return
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// AuthOptional 有令牌时解析查看者，没有时按匿名继续；令牌无效仍然 401
func AuthOptional(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		viewer, err := parseToken(secret, header)
		if err != nil {
			response.Unauthorized(c, "unauthorized")
			return
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// ViewerID 当前请求的查看者，匿名时为空
func ViewerID(c *gin.Context) string {
	return c.GetString(viewerKey)
}
