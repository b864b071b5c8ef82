// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package functions exposes the history service as standalone net/http
// handlers, one per endpoint, suitable for request scoped runtimes.
package functions

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/jcodagnone/historiaviva/api"
	"github.com/jcodagnone/historiaviva/history"
	"github.com/jcodagnone/historiaviva/logging"
)

// LocationHistory answers GET /api/location-history.
func LocationHistory(service *history.Service) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)

			return
		}

		q := r.URL.Query()

		coord, err := history.ParseCoordinate(q.Get("lat"), q.Get("lon"))
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, api.ErrorResponse{Error: api.MsgCoordinatesRequired})

			return
		}

		records := service.Discover(r.Context(), coord, history.ParseLanguage(q.Get("lang")))
		writeJSON(w, r, http.StatusOK, api.NewLocationHistoryResponse(records))
	})

	return wrap(h, api.MsgLocationHistoryFailed)
}

// TodayInHistory answers GET /api/today-in-history.
func TodayInHistory(service *history.Service) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)

			return
		}

		today := service.TodayInHistory(r.Context(), history.ParseLanguage(r.URL.Query().Get("lang")))
		writeJSON(w, r, http.StatusOK, today)
	})

	return wrap(h, api.MsgTodayInHistoryFailed)
}

// Mux mounts both handlers, for running the functions locally.
func Mux(service *history.Service) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(api.LocationHistoryPath, LocationHistory(service))
	mux.Handle(api.TodayInHistoryPath, TodayInHistory(service))

	return mux
}

// wrap adds request ids, CORS, method filtering and panic recovery.
func wrap(h http.Handler, failure string) http.Handler {
	c := api.NewCORS()

	return requestID(recoverer(c.Handler(allowGet(h)), failure))
}

func allowGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodOptions {
			w.Header().Set("Allow", "GET, OPTIONS")
			writeJSON(w, r, http.StatusMethodNotAllowed, api.ErrorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})

			return
		}

		next.ServeHTTP(w, r)
	})
}

func recoverer(next http.Handler, failure string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logging.Ctx(r.Context()).Error().Str("panic", fmt.Sprint(err)).Str("path", r.URL.Path).Msg("handler panicked")
				writeJSON(w, r, http.StatusInternalServerError, api.ErrorResponse{Error: failure})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := api.RequestID(r)
		w.Header().Set(api.RequestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encoding response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
