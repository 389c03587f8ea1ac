package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"chat-captcha/src/pkg/captcha"
	"chat-captcha/src/pkg/config"
	echomw "chat-captcha/src/pkg/echo-middleware"
	"chat-captcha/src/pkg/ocr"
	"chat-captcha/src/pkg/server"
)

/*
main serves the captcha solver over HTTP until SIGINT or SIGTERM.

On shutdown in-flight requests get a grace period and the cache is flushed.
*/
func main() {
	config.CheckIfEnvVarsPresent(echomw.EnvBearerToken)

	// Common flags.
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	// Program-specific flags.
	gracePeriod := flag.Duration("grace", 10*time.Second, "How long in-flight requests may run after a shutdown signal.")

	// Parse and initialize config.
	flag.Parse()
	config.InitializeConfig(*configPath)

	solver := captcha.NewSolver(captcha.Cfg, ocr.Cfg)
	solver.EnsureInitialized()

	e := server.New(solver, int64(echomw.Cfg.MaxConcurrentSolves), echomw.Cfg.MaxBodyBytes)
	address := fmt.Sprintf("%s:%d", echomw.Cfg.Address, echomw.Cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		tl.Log(tl.Notice, palette.BlueBold, "%s captcha server on '%s'", "Starting", address)
		startErr := e.Start(address)
		if startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			xerr.QuitIfError(startErr, "start captcha server on '"+address+"'")
		}
	}()

	<-ctx.Done()
	tl.Log(tl.Notice, palette.Purple, "%s, shutting down within %s", "Signal received", *gracePeriod)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *gracePeriod)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx, e, solver)
	if shutdownErr != nil {
		tl.Log(tl.Warning, palette.Yellow, "Unclean shutdown: '%s'", shutdownErr)
	}

	tl.Log(tl.Notice1, palette.GreenBold, "%s. Stats: %v", "Captcha server stopped", tl.PrettyForStderr(solver.Stats()))
}
