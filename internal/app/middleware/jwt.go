package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/error/code"
	"lifeline-http-service/internal/error/response"
	"lifeline-http-service/internal/infrastructure/config"
)

var (
	jwtService  services.InterfaceJWTService
	gateService services.InterfaceGateService
)

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(cfg *config.Config, gate services.InterfaceGateService) {
	jwtService = services.NewJWTService(cfg)
	gateService = gate
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// AuthenticateAdmin 验证管理员令牌。
// 令牌有效之外还要求门禁处于解锁状态：无操作超时后即使令牌未过期也拒绝，
// 并要求重新输入密码。
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header is required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		tokenString := extractToken(authHeader)
		token, err := jwtService.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid or expired token",
				"data":    nil,
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token claims",
				"data":    nil,
			})
			c.Abort()
			return
		}
		if role, exists := claims["role"].(string); !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "Insufficient permissions: requires admin role",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 无操作自动上锁检查，通过时顺带刷新活动时间
		if gateService != nil {
			if err := gateService.CheckActive(); err != nil {
				response.Fail(c, code.ErrSessionExpired, nil)
				c.Abort()
				return
			}
		}

		c.Set("role", claims["role"])
		c.Set("claims", claims)
		c.Next()
	}
}
