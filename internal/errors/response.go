package errors

import (
	stderrors "errors"
	"net/http"
	"strings"

	"yatube/internal/web"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
}

// SuccessResponse 定义成功响应结构
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,

	// 认证错误 (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrTokenExpired:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrCSRF:               http.StatusForbidden,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceExists:   http.StatusConflict,

	// 业务错误 (4000-4999)
	ErrUserNotFound:    http.StatusNotFound,
	ErrUserExists:      http.StatusConflict,
	ErrWeakPassword:    http.StatusBadRequest,
	ErrPostNotFound:    http.StatusNotFound,
	ErrGroupNotFound:   http.StatusNotFound,
	ErrCommentNotFound: http.StatusNotFound,
}

// StatusOf 返回错误对应的 HTTP 状态码
func StatusOf(err error) int {
	if status, ok := errorStatusMap[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError 统一处理错误响应：/api 下返回 JSON，其余渲染错误页面
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		appErr = Wrap(ErrInternal, "Internal Server Error", err)
	}
	status := StatusOf(appErr)

	if wantsJSON(c) {
		resp := ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		// 内部错误细节不暴露给客户端
		if appErr.Err != nil && status < http.StatusInternalServerError {
			resp.Error = appErr.Err.Error()
		}
		c.AbortWithStatusJSON(status, resp)
		return
	}

	c.Abort()
	web.Render(c, status, errorTemplate(appErr.Code, status), gin.H{
		"path":    c.Request.URL.Path,
		"message": appErr.Message,
	})
}

// HandleSuccess 统一处理成功响应
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	resp := SuccessResponse{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusOK, resp)
}

func errorTemplate(code ErrorCode, status int) string {
	if code == ErrCSRF {
		return "core/403csrf.html"
	}
	switch status {
	case http.StatusBadRequest:
		return "core/400.html"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "core/403.html"
	case http.StatusNotFound:
		return "core/404.html"
	}
	return "core/500.html"
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
