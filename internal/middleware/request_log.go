package middleware

import (
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// RequestLogger logs one line per request.  Client errors log at WARN and
// server errors at ERROR so LOG_LEVEL=warn still surfaces failing calls.
func RequestLogger(l *log.Logger) echo.MiddlewareFunc {
	return echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			switch {
			case v.Status >= 500:
				l.Errorf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			case v.Status >= 400:
				l.Warnf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			default:
				l.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			}
			return nil
		},
	})
}
