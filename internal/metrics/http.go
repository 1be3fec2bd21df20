package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests that hit no registered route, keeping scanners from
// inflating label cardinality.
const unmatchedRoute = "unmatched"

// probeRoutes are polled by orchestrators and left out of the request metrics.
var probeRoutes = map[string]struct{}{
	"/health": {},
	"/ready":  {},
}

// HTTPMetricsMiddleware records request counts and durations labelled by method,
// route pattern and status code. When the instruments cannot be created the
// middleware passes requests through untouched.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	pair, err := newInstrumentPair(
		meterProvider.Meter(namespace),
		namespace,
		"http_requests",
		"HTTP requests",
		"{request}",
	)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := routeLabel(c.FullPath())
		if _, probe := probeRoutes[route]; probe {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		ctx := c.Request.Context()
		pair.counter.Add(ctx, 1, attrs)
		pair.seconds.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// routeLabel returns the gin route pattern, so /v1/orders/V-1 and /v1/orders/V-2
// share /v1/orders/:id.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}
