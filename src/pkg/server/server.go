// Package server exposes a captcha.Solver over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"golang.org/x/sync/semaphore"

	"chat-captcha/src/pkg/captcha"
	echomw "chat-captcha/src/pkg/echo-middleware"
	"chat-captcha/src/pkg/ocr"
)

type SolveRequest struct {
	Image string `json:"image"`
}

type SolveResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	solver *captcha.Solver
	slots  *semaphore.Weighted
}

/*
New builds the Echo instance serving solver.

Routes:

  - POST /v1/solve  {"image": "<base64 or data URI>"} -> {"text": "..."}
  - GET  /v1/stats  solver counters

Every /v1 route needs the bearer token and is rate limited per client IP. At
most maxConcurrent recognitions run at once; requests past that wait for a slot
until their context is done.
*/
func New(solver *captcha.Solver, maxConcurrent int64, maxBodyBytes string) *echo.Echo {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	echomw.UpdateRateLimits(echomw.Cfg.MiddlewareRateLimit, echomw.Cfg.MiddlewareBurst)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	if maxBodyBytes != "" {
		e.Use(middleware.BodyLimit(maxBodyBytes))
	}
	e.Use(echomw.RouteAccessLoggerMiddleware)

	h := &handler{
		solver: solver,
		slots:  semaphore.NewWeighted(maxConcurrent),
	}

	v1 := e.Group("/v1", echomw.RateLimiterMiddleware, echomw.RequireBearerToken)
	v1.POST("/solve", h.solve)
	v1.GET("/stats", h.stats)

	return e
}

func (h *handler) solve(c echo.Context) error {
	var request SolveRequest
	bindErr := c.Bind(&request)
	if bindErr != nil || strings.TrimSpace(request.Image) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body must be {\"image\": \"<base64>\"}"})
	}

	ctx := c.Request().Context()
	acquireErr := h.slots.Acquire(ctx, 1)
	if acquireErr != nil {
		tl.Log(tl.Verbose, palette.YellowDim, "Gave up waiting for a solve slot: '%s'", acquireErr)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "solver busy"})
	}
	defer h.slots.Release(1)

	text, err := h.solver.SolveDetailed(request.Image)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: failureReason(err)})
	}

	return c.JSON(http.StatusOK, SolveResponse{Text: text})
}

func (h *handler) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.solver.Stats())
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, captcha.ErrDecodeFailure):
		return "decode failure"
	case errors.Is(err, ocr.ErrFormatMismatch):
		return "format mismatch"
	case errors.Is(err, ocr.ErrValidationFailure):
		return "validation failure"
	default:
		return "unsolvable"
	}
}

// Shutdown stops accepting requests and flushes the solver cache once
// in-flight requests are done.
func Shutdown(ctx context.Context, e *echo.Echo, solver *captcha.Solver) error {
	err := e.Shutdown(ctx)
	solver.Flush()
	return err
}
