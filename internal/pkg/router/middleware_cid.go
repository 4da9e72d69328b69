package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
)

const (
	// HeaderCorrelationID carries the id echoed on every response and log line.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is read when a proxy sets it instead.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// validCorrelationID reports whether v is safe to echo and log verbatim.
func validCorrelationID(v string) bool {
	if v == "" || len(v) > maxCorrelationIDLen {
		return false
	}

	return !strings.ContainsFunc(v, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '-', r == '_', r == '.', r == ':':
			return false
		}
		return true
	})
}

// correlationID picks the first acceptable inbound id, or mints one.
func correlationID(r *http.Request, gen uid.StringID) string {
	for _, name := range []string{HeaderCorrelationID, HeaderRequestID} {
		if v := strings.TrimSpace(r.Header.Get(name)); validCorrelationID(v) {
			return v
		}
	}
	if gen == nil {
		return ""
	}

	return gen.Generate()
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cid := correlationID(r, gen); cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
