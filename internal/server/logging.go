package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewLogger builds the server logger from a level name and a format
// ("text" or "json").
func NewLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors:          true,
			DisableLevelTruncation: true,
			FullTimestamp:          true,
			QuoteEmptyFields:       true,
			TimestampFormat:        time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}

// statusRecorder remembers the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Flush lets streaming handlers (the metrics endpoint) flush through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// loggingHandler logs one line per request and counts it in metrics.
func loggingHandler(logger *logrus.Logger, metrics *Metrics) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			h.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			metrics.observeRequest(r.Method, rec.status)

			entry := logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"bytes":    rec.bytes,
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			})
			if ref := r.Header.Get("X-Reference-Id"); ref != "" {
				entry = entry.WithField("X-Reference-Id", ref)
			}

			switch {
			case rec.status >= http.StatusInternalServerError:
				entry.Error("request failed")
			case rec.status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
		})
	}
}

// limitBody caps request bodies at n bytes.
func limitBody(n int64) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			h.ServeHTTP(w, r)
		})
	}
}
