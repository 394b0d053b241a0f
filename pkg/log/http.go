package log

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// HTTPLogger writes one entry per GitHub API request and response.
type HTTPLogger struct {
	logger *log.Logger
}

// NewHTTPLogger creates a new HTTPLogger instance
func NewHTTPLogger(logger *log.Logger) *HTTPLogger {
	return &HTTPLogger{
		logger: logger,
	}
}

// LogRequest logs information about an HTTP request
func (l *HTTPLogger) LogRequest(req *http.Request) {
	l.logger.WithFields(log.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
		"host":   req.Host,
		"path":   req.URL.Path,
	}).Debug("HTTP request")
}

// LogResponse logs information about an HTTP response
func (l *HTTPLogger) LogResponse(req *http.Request, res *http.Response, err error, duration time.Duration) {
	durationMs := duration / time.Millisecond

	fields := log.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"host":       req.Host,
		"path":       req.URL.Path,
		"durationMs": int64(durationMs),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.logger.WithFields(fields).Error("HTTP response error")
	} else {
		fields["status"] = res.StatusCode
		l.logger.WithFields(fields).Debug("HTTP response")
	}
}

// Transport is an http.RoundTripper that reports every round trip to an
// HTTPLogger.
type Transport struct {
	Base   http.RoundTripper
	Logger *HTTPLogger
}

// NewTransport wraps base, or http.DefaultTransport when base is nil.
func NewTransport(base http.RoundTripper, logger *log.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		Base:   base,
		Logger: NewHTTPLogger(logger),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.Logger.LogRequest(req)
	start := time.Now()
	res, err := t.Base.RoundTrip(req)
	t.Logger.LogResponse(req, res, err, time.Since(start))
	return res, err
}
