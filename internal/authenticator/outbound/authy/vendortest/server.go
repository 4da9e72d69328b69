// Package vendortest runs an in-process stub of the vendor API for tests.
package vendortest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
)

// Routes of the stub, used with Fail and Requests.
const (
	RouteUserStatus           = "user_status"
	RouteRegistrationStart    = "registration_start"
	RouteRegistrationStatus   = "registration_status"
	RouteRegistrationComplete = "registration_complete"
	RouteDeviceCheck          = "device_check"
	RouteAuthSync             = "auth_sync"
	RouteTokens               = "authenticator_tokens"
	RouteDeviceKeys           = "device_keys"
)

// Fixture values answered by the stub.
const (
	AuthyID      uint64 = 12345
	RequestID           = "603a4d9e613cafeac8e36234d"
	PIN                 = "12345"
	DeviceID     uint64 = 321321
	DeviceSecret        = "48bebacafe22334beba47dcafe37252a"
	Cellphone           = "17172720"
	CountryCode  uint8  = 49
)

// Request is one call received by the stub.
type Request struct {
	Route  string
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
}

type failure struct {
	status int
	body   string
}

// Server is the stub vendor. Exported fields may be changed before the
// first request.
type Server struct {
	*httptest.Server

	// UserMessage is returned by the user status check.
	UserMessage string
	// PendingPolls is how many status polls answer pending before accepted.
	PendingPolls int
	// MovingFactor is returned by auth_sync, truncated like the real API.
	MovingFactor string
	// Tokens is returned by the token listing.
	Tokens []entity.AuthenticatorToken

	mu       sync.Mutex
	polls    int
	requests []Request
	failures map[string]failure
}

// New starts a stub vendor and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		UserMessage:  entity.UserMessageActive,
		PendingPolls: 1,
		MovingFactor: "170000000",
		failures:     make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /json/users/{phone}/status", s.handle(RouteUserStatus, s.userStatus))
	mux.HandleFunc("POST /json/users/{authy_id}/devices/registration/start", s.handle(RouteRegistrationStart, s.registrationStart))
	mux.HandleFunc("GET /json/users/{authy_id}/devices/registration/{request_id}/status", s.handle(RouteRegistrationStatus, s.registrationStatus))
	mux.HandleFunc("POST /json/users/{authy_id}/devices/registration/complete", s.handle(RouteRegistrationComplete, s.registrationComplete))
	mux.HandleFunc("GET /json/devices/{device_id}/soft_tokens/{token_id}/check", s.handle(RouteDeviceCheck, s.deviceCheck))
	mux.HandleFunc("GET /json/devices/{device_id}/auth_sync", s.handle(RouteAuthSync, s.authSync))
	mux.HandleFunc("GET /json/users/{authy_id}/authenticator_tokens", s.handle(RouteTokens, s.tokens))
	mux.HandleFunc("GET /json/users/{authy_id}/devices/{device_id}", s.handle(RouteDeviceKeys, s.deviceKeys))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the vendor base URL to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/json"
}

// Fail makes route answer status with body from now on.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] = failure{status: status, body: body}
}

// Requests returns the calls received on route so far.
func (s *Server) Requests(route string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Request
	for _, r := range s.requests {
		if r.Route == route {
			out = append(out, r)
		}
	}

	return out
}

func (s *Server) handle(route string, h func(*http.Request) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:  route,
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Form:   r.PostForm,
			Header: r.Header.Clone(),
		})
		f, failing := s.failures[route]
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if failing {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}

		_ = json.NewEncoder(w).Encode(h(r))
	}
}

func (s *Server) userStatus(*http.Request) any {
	return map[string]any{
		"authy_id":      AuthyID,
		"devices_count": 1,
		"force_ott":     true,
		"message":       s.UserMessage,
		"success":       true,
	}
}

func (s *Server) registrationStart(*http.Request) any {
	return map[string]any{
		"approval_pin": 1,
		"message":      "A request was sent to your other devices.",
		"provider":     "push",
		"request_id":   RequestID,
		"success":      true,
	}
}

func (s *Server) registrationStatus(*http.Request) any {
	s.mu.Lock()
	s.polls++
	accepted := s.polls > s.PendingPolls
	s.mu.Unlock()

	body := map[string]any{
		"message": map[string]string{"request_status": "Request Status."},
		"status":  string(entity.RegistrationPending),
		"success": true,
	}
	if accepted {
		body["status"] = string(entity.RegistrationAccepted)
		body["pin"] = PIN
	}

	return body
}

func (s *Server) registrationComplete(r *http.Request) any {
	authyID, _ := strconv.ParseUint(r.PathValue("authy_id"), 10, 64)

	return map[string]any{
		"authy_id": authyID,
		"device": map[string]any{
			"api_key":     "not important here",
			"id":          DeviceID,
			"reinstall":   false,
			"secret_seed": DeviceSecret,
		},
	}
}

func (s *Server) deviceCheck(*http.Request) any {
	return map[string]any{"message": "Token is correct.", "success": true}
}

func (s *Server) authSync(*http.Request) any {
	return map[string]any{"moving_factor": s.MovingFactor}
}

func (s *Server) tokens(*http.Request) any {
	tokens := s.Tokens
	if tokens == nil {
		tokens = []entity.AuthenticatorToken{}
	}

	return map[string]any{"authenticator_tokens": tokens, "message": "", "success": true}
}

func (s *Server) deviceKeys(*http.Request) any {
	return map[string]any{
		"cellphone":            Cellphone,
		"country_code":         CountryCode,
		"email":                "fakeuser@gmail.com",
		"multidevices_enabled": true,
		"success":              true,
	}
}
