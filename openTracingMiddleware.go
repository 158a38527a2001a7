package main

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// OpenTracingMiddleware starts a server span per request, joining the caller's trace when its headers carry one
func OpenTracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {

		if isProbePath(c.Request.URL.Path) {
			c.Next()
			return
		}

		// a missing upstream context just starts a new trace
		upstreamCtx, _ := opentracing.GlobalTracer().Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header))

		operationName := c.Request.Method + " " + c.FullPath()
		if c.FullPath() == "" {
			operationName = c.Request.Method + " unmatched"
		}

		span := opentracing.StartSpan(operationName, ext.RPCServerOption(upstreamCtx))
		defer span.Finish()

		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))

		c.Next()

		statusCode := c.Writer.Status()
		ext.HTTPStatusCode.Set(span, uint16(statusCode))
		if statusCode >= 500 {
			ext.Error.Set(span, true)
		}
	}
}
