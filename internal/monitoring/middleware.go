// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package monitoring

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/inventory-identity/internal/logging"
)

// Middleware records per route response times on the configured monitor
type Middleware struct {
	monitor MonitorInterface
	logger  logging.LoggerInterface
}

// ResponseTime uses the matched chi route pattern as label to keep cardinality bounded
func (mdw *Middleware) ResponseTime() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			tags := map[string]string{
				"route":  route,
				"status": http.StatusText(ww.Status()),
			}

			if err := mdw.monitor.SetResponseTimeMetric(tags, time.Since(startTime).Seconds()); err != nil {
				mdw.logger.Debugf("error recording response time: %s", err)
			}
		})
	}
}

func NewMiddleware(monitor MonitorInterface, logger logging.LoggerInterface) *Middleware {
	mdw := new(Middleware)

	mdw.monitor = monitor
	mdw.logger = logger

	return mdw
}
