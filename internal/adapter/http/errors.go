package http

import (
	"errors"
	"net/http"

	"devscore/internal/common"
	"devscore/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMiddleware 把 handler 通过 c.Error 上报的错误统一转成 JSON 响应
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		code := common.CodeOf(err)
		status := StatusOf(code)
		if status >= http.StatusInternalServerError {
			log.Error("请求处理失败", err, zap.String("path", c.FullPath()), zap.String("code", code))
			c.JSON(status, errorBody(code, "internal server error"))
			return
		}

		message := err.Error()
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		c.JSON(status, errorBody(code, message))
	}
}

// StatusOf 错误码到 HTTP 状态码
func StatusOf(code string) int {
	switch code {
	case common.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case common.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case common.ErrCodeNotFound:
		return http.StatusNotFound
	case common.ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}
