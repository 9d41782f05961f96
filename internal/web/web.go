// Package web 负责加载内嵌的 HTML 模板并统一注入页面公共上下文。
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

//go:embed templates
var templateFS embed.FS

// 上下文中保存当前用户和 CSRF 令牌的键，中间件写入，渲染时读取
const (
	UserKey      = "user"
	UserIDKey    = "user_id"
	CSRFTokenKey = "csrf_token"
)

// FuncMap 模板中可用的辅助函数
var FuncMap = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006 15:04")
	},
	"truncate": func(s string, n int) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		r := []rune(s)
		return string(r[:n]) + "…"
	},
	"linebreaks": func(s string) []string {
		return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	},
}

// Templates 解析全部内嵌模板
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap).ParseFS(templateFS, "templates/*/*.html")
}

// LoadTemplates 把模板挂到 gin 引擎上
func LoadTemplates(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}

// Render 渲染模板，自动带上当前用户、CSRF 令牌和请求路径
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := c.Get(UserKey); ok {
		data["user"] = user
	}
	data["csrf_token"] = c.GetString(CSRFTokenKey)
	data["request_path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}
