package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

var _ http.RoundTripper = (*HTTPRequests)(nil)

// HTTPRequests logs every outbound request with method, path, status and
// duration before delegating to the wrapped transport.
type HTTPRequests struct {
	logger zerolog.Logger
	next   http.RoundTripper
}

// NewHTTPRequests wraps next with request logging. A nil next uses
// http.DefaultTransport.
func NewHTTPRequests(logger zerolog.Logger, next http.RoundTripper) *HTTPRequests {
	if next == nil {
		next = http.DefaultTransport
	}
	return &HTTPRequests{logger: logger, next: next}
}

func (h *HTTPRequests) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	resp, err := h.next.RoundTrip(req)

	if err != nil {
		h.logger.Error().
			Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("duration", time.Since(started)).
			Msg("http call")

		return resp, err
	}

	h.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("http call")

	return resp, err
}
