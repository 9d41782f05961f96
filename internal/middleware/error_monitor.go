package middleware

import (
	stderrors "errors"
	"strconv"
	"sync"

	"yatube/internal/errors"
	"yatube/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorMonitor struct {
	errorCounts map[errors.ErrorCode]int
	mu          sync.RWMutex
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		errorCounts: make(map[errors.ErrorCode]int),
	}
}

func (m *ErrorMonitor) RecordError(err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return
	}
	m.mu.Lock()
	m.errorCounts[appErr.Code]++
	m.mu.Unlock()
}

// GetErrorCounts 返回以错误码字符串为键的计数快照
func (m *ErrorMonitor) GetErrorCounts() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int, len(m.errorCounts))
	for code, count := range m.errorCounts {
		counts[strconv.Itoa(int(code))] = count
	}
	return counts
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			monitor.RecordError(e.Err)
			var appErr *errors.AppError
			if !stderrors.As(e.Err, &appErr) {
				continue
			}
			fields := []zap.Field{
				zap.Int("error_code", int(appErr.Code)),
				zap.String("error_message", appErr.Message),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			}
			if appErr.Err != nil {
				fields = append(fields, zap.Error(appErr.Err))
			}
			if errors.StatusOf(appErr) >= 500 {
				util.Logger.Error("请求处理错误", fields...)
			} else {
				util.Logger.Info("请求处理错误", fields...)
			}
		}
	}
}
