package middleware

import (
	"bytes"
	"net/http"
	"strconv"

	"yatube/internal/cache"
	"yatube/internal/util"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CacheHeader = "X-Cache"

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage 缓存 GET 请求的整页响应，只保存 200 响应，过期前数据变化不可见
func CachePage(pc *cache.PageCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cache.Key(c.Request.URL.Path, pageNumber(c.Query("page")), c.GetInt(web.UserIDKey))
		if entry, ok := pc.Get(key); ok {
			header := c.Writer.Header()
			for k, v := range entry.Header {
				header[k] = v
			}
			header.Set(CacheHeader, "HIT")
			c.Data(entry.Status, header.Get("Content-Type"), entry.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Header(CacheHeader, "MISS")
		c.Next()

		if rec.Status() != http.StatusOK {
			return
		}
		header := rec.Header().Clone()
		header.Del("Set-Cookie")
		header.Del(CacheHeader)
		pc.Set(key, cache.Entry{
			Status: rec.Status(),
			Header: header,
			Body:   bytes.Clone(rec.body.Bytes()),
		})
		util.Logger.Debug("页面已缓存", zap.String("key", key))
	}
}

// pageNumber 只做数字解析，越界页码由分页器处理
func pageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}
