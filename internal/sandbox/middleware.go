package sandbox

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// FailConfig injects failures into a fraction of requests.
type FailConfig struct {
	Rate float64
	Code int
}

// ParseFailConfig parses "rate=<float>,code=<httpStatus>". An empty string
// disables injection; the code defaults to 500.
func ParseFailConfig(raw string) (FailConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return FailConfig{}, nil
	}
	cfg := FailConfig{Code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return FailConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			val, err := strconv.ParseFloat(strings.TrimSpace(keyVal[1]), 64)
			if err != nil {
				return FailConfig{}, err
			}
			if val < 0 || val > 1 {
				return FailConfig{}, fmt.Errorf("fail rate %v out of range [0,1]", val)
			}
			cfg.Rate = val
		case "code":
			val, err := strconv.Atoi(strings.TrimSpace(keyVal[1]))
			if err != nil {
				return FailConfig{}, err
			}
			if val < 100 || val > 599 {
				return FailConfig{}, fmt.Errorf("fail code %d is not an HTTP status", val)
			}
			cfg.Code = val
		default:
			return FailConfig{}, fmt.Errorf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Latency > 0 {
			timer := time.NewTimer(s.cfg.Latency)
			select {
			case <-r.Context().Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Fail.Rate > 0 && s.rand() < s.cfg.Fail.Rate {
			code := s.cfg.Fail.Code
			if code == 0 {
				code = http.StatusInternalServerError
			}
			s.logger.Debug("failure injected", "method", r.Method, "path", r.URL.Path, "status", code)
			http.Error(w, "failure injected", code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			route, _ = cur.GetPathTemplate()
		}
		s.logger.Info("request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}
