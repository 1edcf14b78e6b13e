package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinWrap adapts a net/http middleware to Gin. When the wrapped middleware
// answers the request itself the Gin chain stops.
func GinWrap(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// A bare WriteHeader is buffered by gin; flush it before stopping.
		if !passed {
			c.Writer.WriteHeaderNow()
			c.Abort()
		}
	}
}

// GinRequireAuth adapts the net/http AuthMiddleware to Gin.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return GinWrap(auth.RequireAuth)
}

// Except runs mw for every path but the given ones.
func Except(mw gin.HandlerFunc, paths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		mw(c)
	}
}
