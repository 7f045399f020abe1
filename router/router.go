// Package router wires the example controller into a gin.Engine and
// runs it with a plain listen/graceful-shutdown idiom, carrying none of
// the auth/casbin/swagger/metrics machinery that doesn't apply to a
// single demo collection.
package router

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/forbearing/gstore/config"
	"github.com/forbearing/gstore/controller"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	root   *gin.Engine
	server *http.Server
)

// Init builds the gin.Engine and mounts ctl's routes under /widgets.
func Init(ctl *controller.Controller) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	root = gin.New()
	root.Use(gin.Recovery())

	root.GET("/-/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	widgets := root.Group("/widgets")
	widgets.POST("", ctl.Create)
	widgets.GET("", ctl.List)
	widgets.GET("/:id", ctl.Get)
	widgets.PATCH("/:id", ctl.Update)
	widgets.DELETE("/:id", ctl.Delete)

	return root
}

// Run starts the HTTP server and blocks until it stops (Shutdown is
// called from another goroutine, or the process is killed).
func Run() error {
	addr := net.JoinHostPort(config.App.Server.Listen, strconv.Itoa(config.App.Server.Port))
	zap.S().Infow("backend server started", "addr", addr)

	server = &http.Server{
		Addr:         addr,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.S().Errorw("failed to start server", "err", err)
		return err
	}
	return nil
}

// Stop gracefully shuts the server down, giving in-flight requests up
// to 10 seconds to finish.
func Stop() {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zap.S().Errorw("backend server shutdown failed", "err", err)
	} else {
		zap.S().Infow("backend server shutdown completed")
	}
	server = nil
}
