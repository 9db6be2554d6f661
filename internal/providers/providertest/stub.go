// Package providertest runs an in-process stand-in for the flight-data
// provider so gateway and handler tests can exercise real HTTP round trips.
package providertest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

const (
	TokenPath           = "/v1/security/oauth2/token"
	SchedulePath        = "/v2/schedule/flights"
	FlightOffersPath    = "/v2/shopping/flight-offers"
	AirlinesPath        = "/v1/reference-data/airlines"
	AircraftPath        = "/v1/reference-data/aircraft"
	DelayPredictionPath = "/v1/travel/predictions/flight-delay"

	Token = "stub-token"
)

type Response struct {
	Status int
	Body   string
}

func OK(body string) Response {
	return Response{Status: http.StatusOK, Body: body}
}

// Data wraps a data member the way the provider does.
func Data(data string) Response {
	return OK(`{"data":` + data + `}`)
}

// Handler produces the response for one path given the request query.
type Handler func(q url.Values) Response

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	handlers  map[string]Handler
	calls     map[string]int
	queries   map[string][]url.Values
	expiresIn int
}

func NewServer() *Server {
	s := &Server{
		handlers:  make(map[string]Handler),
		calls:     make(map[string]int),
		queries:   make(map[string][]url.Values),
		expiresIn: 1799,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Handle replaces the handler for path.
func (s *Server) Handle(path string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = h
}

// Respond makes path always answer with r.
func (s *Server) Respond(path string, r Response) {
	s.Handle(path, func(url.Values) Response { return r })
}

func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) Queries(path string) []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.queries[path]...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.URL.Path]++
	s.queries[r.URL.Path] = append(s.queries[r.URL.Path], r.URL.Query())
	h, ok := s.handlers[r.URL.Path]
	expiresIn := s.expiresIn
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == TokenPath && !ok {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unsupported_grant_type"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"access_token":%q,"expires_in":%d,"token_type":"Bearer"}`, Token, expiresIn)
		return
	}

	if r.URL.Path != TokenPath && r.Header.Get("Authorization") != "Bearer "+Token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"status":401,"title":"Invalid access token"}]}`))
		return
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"status":404,"title":"Resource not found"}]}`))
		return
	}

	resp := h(r.URL.Query())
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}
