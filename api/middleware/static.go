package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// mimeOverrides 静态文件的MIME类型修正
var mimeOverrides = map[string]string{
	".js":    "application/javascript; charset=utf-8",
	".mjs":   "application/javascript; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".eot":   "application/vnd.ms-fontobject",
}

// MimeType 返回路径对应的修正MIME类型
func MimeType(p string) (string, bool) {
	ct, ok := mimeOverrides[strings.ToLower(path.Ext(p))]
	return ct, ok
}

// Cors 跨域资源共享中间件
// 所有响应都允许任意来源并禁止缓存
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+TraceIDHeader)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		h.Set("Cache-Control", "no-cache")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// StaticFiles 从目录提供静态文件，用于没有匹配路由的GET/HEAD请求
func StaticFiles(root string) gin.HandlerFunc {
	fileServer := http.FileServer(gin.Dir(root, true))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			HandleError(c, NewNotFoundError("route not found"))
			return
		}
		// http.FileServer 不会覆盖已设置的Content-Type
		if ct, ok := MimeType(c.Request.URL.Path); ok {
			c.Header("Content-Type", ct)
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
