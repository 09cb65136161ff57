package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"nscollab/observability"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	identityKey
	requestStateKey
)

// requestState is shared by the outer middleware and the subrouters it wraps.
// Subrouter middleware fills it in so the access log sees the caller.
type requestState struct {
	identity *Identity
}

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware reuses a caller supplied request id or assigns a new one
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = context.WithValue(ctx, requestStateKey, &requestState{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs every request and records its metrics
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)

		observability.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		observability.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		requestLogger(r).WithFields(log.Fields{
			"method":   r.Method,
			"route":    route,
			"status":   rec.status,
			"duration": elapsed.String(),
		}).Debug("Handled request")
	})
}

// authMiddleware resolves the bearer token to a member identity
func authMiddleware(provider IdentityProvider) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				setErrorResponse(w, http.StatusUnauthorized, errTypeUnauthorized, "Please sign in with Discord.")
				return
			}

			identity, err := provider.Resolve(r.Context(), strings.TrimSpace(token))
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) {
					requestLogger(r).WithError(err).Warn("Failed to resolve identity")
				}
				setErrorResponse(w, http.StatusUnauthorized, errTypeUnauthorized, "Your session has expired. Please sign in again.")
				return
			}

			if state, ok := r.Context().Value(requestStateKey).(*requestState); ok {
				state.identity = identity
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}

// identityFrom returns the authenticated member of a request
func identityFrom(r *http.Request) (*Identity, bool) {
	if identity, ok := r.Context().Value(identityKey).(*Identity); ok && identity != nil {
		return identity, true
	}
	// Outer middleware only sees what auth recorded on the shared state
	if state, ok := r.Context().Value(requestStateKey).(*requestState); ok && state.identity != nil {
		return state.identity, true
	}
	return nil, false
}

// requestLogger returns a logger tagged with the request id
func requestLogger(r *http.Request) *log.Entry {
	id, _ := r.Context().Value(requestIDKey).(string)
	entry := log.WithField("request_id", id)
	if identity, ok := identityFrom(r); ok {
		entry = entry.WithField("user_id", identity.UserID)
	}
	return entry
}
