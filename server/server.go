// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the history service as a long running gin application.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/jcodagnone/historiaviva/api"
	"github.com/jcodagnone/historiaviva/history"
	"github.com/jcodagnone/historiaviva/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the gin front end of a history.Service.
type Server struct {
	service *history.Service
	cors    *cors.Cors
}

// NewServer creates a new server on top of service.
func NewServer(service *history.Service) *Server {
	return &Server{
		service: service,
		cors:    api.NewCORS(),
	}
}

// Handler builds the router with every route and middleware registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(), gin.CustomRecovery(s.recovery), s.corsMiddleware())

	r.GET(api.LocationHistoryPath, s.locationHistory)
	r.OPTIONS(api.LocationHistoryPath, preflight)
	r.GET(api.TodayInHistoryPath, s.todayInHistory)
	r.OPTIONS(api.TodayInHistoryPath, preflight)
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logging.Info().Str("addr", addr).Msg("server listening")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logging.Info().Msg("server shutting down")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

func (s *Server) locationHistory(ctx *gin.Context) {
	coord, err := history.ParseCoordinate(ctx.Query("lat"), ctx.Query("lon"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgCoordinatesRequired})

		return
	}

	lang := history.ParseLanguage(ctx.Query("lang"))
	records := s.service.Discover(ctx.Request.Context(), coord, lang)

	ctx.JSON(http.StatusOK, api.NewLocationHistoryResponse(records))
}

func (s *Server) todayInHistory(ctx *gin.Context) {
	lang := history.ParseLanguage(ctx.Query("lang"))

	ctx.JSON(http.StatusOK, s.service.TodayInHistory(ctx.Request.Context(), lang))
}

func preflight(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
}

// recovery answers a panicking handler with the endpoint specific error body.
func (s *Server) recovery(ctx *gin.Context, err any) {
	logging.Ctx(ctx.Request.Context()).Error().Str("panic", fmt.Sprint(err)).Str("path", ctx.FullPath()).Msg("handler panicked")

	msg := http.StatusText(http.StatusInternalServerError)

	switch ctx.FullPath() {
	case api.LocationHistoryPath:
		msg = api.MsgLocationHistoryFailed
	case api.TodayInHistoryPath:
		msg = api.MsgTodayInHistoryFailed
	}

	ctx.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: msg})
}

// corsMiddleware runs the shared net/http CORS handler inside the gin chain.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		called := false

		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			ctx.Request = r
			ctx.Next()
		})

		s.cors.Handler(next).ServeHTTP(ctx.Writer, ctx.Request)

		if !called {
			ctx.Abort()
		}
	}
}

func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := api.RequestID(ctx.Request)
		ctx.Header(api.RequestIDHeader, id)
		ctx.Request = ctx.Request.WithContext(logging.ContextWithRequestID(ctx.Request.Context(), id))
		ctx.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		logging.Ctx(ctx.Request.Context()).Info().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
