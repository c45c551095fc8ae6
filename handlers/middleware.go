package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"combatStore/entities"
	"combatStore/models"

	log "github.com/sirupsen/logrus"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	profileKey
)

func sessionFrom(r *http.Request) entities.Session {
	sess, _ := r.Context().Value(sessionKey).(entities.Session)
	return sess
}

func profileFrom(r *http.Request) models.UserProfile {
	profile, _ := r.Context().Value(profileKey).(models.UserProfile)
	return profile
}

// AuthMiddleware resolves the session cookie and stores the session in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		sess, err := h.ids.CurrentUser(r.Context(), c.Value)
		if err != nil {
			log.WithError(err).Error("AuthMiddleware")
			WriteErrorResponse(w, err)
			return
		}
		if sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, *sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware must run after AuthMiddleware. A missing profile is treated like a non-admin one.
func (h *Handler) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		profile, err := h.ids.Profile(r.Context(), sess.UserId)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			WriteErrorResponse(w, err)
			return
		}
		if err != nil || !h.authz.IsAdmin(profile) {
			log.WithField("user", sess.UserId).Warn("admin route: access denied")
			http.Error(w, models.ErrUnauthorized.Error(), http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) ErrorHandleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("stacktrace", string(debug.Stack())).Errorf("panic occurred: %v", rec)
				http.Error(w, "something went wrong, contact with service administration", http.StatusBadGateway)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL.String(),
			"remote":     r.RemoteAddr,
			"user_agent": r.UserAgent(),
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}
