package middleware

import (
	"crypto/subtle"
	"net/http"

	"yatube/internal/errors"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CSRFCookie    = "csrftoken"
	CSRFFormField = "csrf_token"
	CSRFHeader    = "X-CSRFToken"
)

// CSRF 双提交 cookie 校验：非安全方法必须在表单或请求头中带回 cookie 里的令牌
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CSRFCookie)
		if err != nil || token == "" {
			token = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CSRFCookie, token, 365*24*3600, "/", "", false, false)
		}
		c.Set(web.CSRFTokenKey, token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			c.Next()
			return
		}

		sent := c.PostForm(CSRFFormField)
		if sent == "" {
			sent = c.GetHeader(CSRFHeader)
		}
		if err != nil || sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
			errors.HandleError(c, errors.New(errors.ErrCSRF, "CSRF verification failed. Request aborted."))
			return
		}
		c.Next()
	}
}
