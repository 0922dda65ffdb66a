// README: Access log middleware.
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

var logger = log.New(log.Writer(), "[http] ", log.LstdFlags)

func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Printf("%s %s %d %s id=%s ip=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond), GetRequestID(c), c.ClientIP())
	}
}
