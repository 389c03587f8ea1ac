package echomw

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// stats is polled by monitoring, keep it out of the default log level
const quietPath = "/v1/stats"

func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)

		err := next(c)

		logLevel, colorizer := tl.Info1, palette.Green
		if c.Path() == quietPath {
			logLevel, colorizer = tl.Verbose, palette.CyanDim
		}
		tl.Log(
			logLevel, colorizer, "%s: Method='%s', Path='%s', Status='%s', Took='%s'",
			"Route served", c.Request().Method, c.Path(), fmt.Sprintf("%d", c.Response().Status), time.Since(start).String(),
		)
		return err
	}
}

// LogRouteAccess logs one line about the current request.
func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if c.Path() == quietPath {
		logLevel = tl.Verbose
		colorizer = palette.CyanDim
	}
	tl.Log(logLevel, colorizer, "%s: Method='%s', Path='%s', ClientIP='%s'", actionName, c.Request().Method, c.Path(), c.RealIP())
}
