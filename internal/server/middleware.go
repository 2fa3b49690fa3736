package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ctxKey es el tipo de las keys del contexto de request de este paquete.
type ctxKey int

const userIDKey ctxKey = iota

// authenticate resuelve la identidad del caller y la inyecta en el contexto.
// Sin credencial resoluble el request muere aquí con 401: los handlers de
// watchlist solo ven requests autenticados.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.resolver.ResolveUserID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser devuelve el userId autenticado del contexto.
func currentUser(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// statusRecorder captura el status code para el log de requests.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// logRequests loguea cada request con método, ruta, status y duración.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// recoverPanics convierte un panic de handler en un 500 genérico.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic", "panic", rec, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
