package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"devscore/internal/common"
	"devscore/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const GinContextKeyOwnerID = "ownerID"

const issuer = "devscore-api"

// JWTService 校验外部身份服务签发的 HS256 token，sub 为用户 uuid
type JWTService struct {
	secretKey     []byte
	tokenLifespan time.Duration
}

func NewJWTService(secretKey string, tokenLifespan time.Duration) *JWTService {
	return &JWTService{
		secretKey:     []byte(secretKey),
		tokenLifespan: tokenLifespan,
	}
}

// GenerateToken 本地调试用
func (s *JWTService) GenerateToken(ownerID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifespan)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Subject:   ownerID.String(),
		Issuer:    issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("cannot sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken 返回 token 中的用户 id
func (s *JWTService) ValidateToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signature algorithm: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	ownerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sub is not a uuid: %w", err)
	}
	return ownerID, nil
}

func AuthMiddleware(jwtSvc *JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(common.ErrCodeUnauthorized, "Authorization header is required"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(common.ErrCodeUnauthorized, "Invalid token format"))
			return
		}

		ownerID, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("token 校验失败", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(common.ErrCodeUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(GinContextKeyOwnerID, ownerID)
		c.Next()
	}
}

func GetOwnerIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	ownerID, ok := c.Get(GinContextKeyOwnerID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := ownerID.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return id, true
}
