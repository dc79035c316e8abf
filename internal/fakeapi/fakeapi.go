// internal/fakeapi/fakeapi.go

// Package fakeapi is an in-memory stand-in for the admin REST API, used by
// tests to exercise clients and synchronizers over real HTTP.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Record is one stored JSON object.
type Record map[string]any

// Request is an entry of the request log.
type Request struct {
	Method   string
	Resource string
	ID       string
	Body     []byte
}

type collection struct {
	nextID  int
	records []Record
}

// Server serves /api/{resource} and /api/{resource}/{id}.
type Server struct {
	mu          sync.Mutex
	collections map[string]*collection
	requests    []Request
	failures    map[string]int
	router      chi.Router
}

// New creates an empty server.
func New() *Server {
	s := &Server{
		collections: make(map[string]*collection),
		failures:    make(map[string]int),
	}

	r := chi.NewRouter()
	r.Route("/api/{resource}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleReplace)
		r.Patch("/{id}", s.handleMerge)
		r.Delete("/{id}", s.handleDelete)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Seed appends records to a collection, assigning ids to records without one.
func (s *Server) Seed(resource string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(resource)
	for _, rec := range records {
		rec = clone(rec)
		if _, ok := rec["id"]; !ok {
			c.nextID++
			rec["id"] = c.nextID
		} else if n, ok := asInt(rec["id"]); ok && n > c.nextID {
			c.nextID = n
		}
		c.records = append(c.records, rec)
	}
}

// Records returns a copy of a collection.
func (s *Server) Records(resource string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(resource)
	out := make([]Record, len(c.records))
	for i, rec := range c.records {
		out[i] = clone(rec)
	}
	return out
}

// Requests returns the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests counts logged requests with the given method.
func (s *Server) CountRequests(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// FailNext makes the next request with method answer with status.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

func (s *Server) collection(resource string) *collection {
	c, ok := s.collections[resource]
	if !ok {
		c = &collection{}
		s.collections[resource] = c
	}
	return c
}

// begin logs the request and reports an injected failure status, if any.
func (s *Server) begin(r *http.Request) (body []byte, status int) {
	body, _ = io.ReadAll(r.Body)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{
		Method:   r.Method,
		Resource: chi.URLParam(r, "resource"),
		ID:       chi.URLParam(r, "id"),
		Body:     body,
	})
	if code, ok := s.failures[r.Method]; ok {
		delete(s.failures, r.Method)
		return body, code
	}
	return body, 0
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if _, status := s.begin(r); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	writeJSON(w, http.StatusOK, s.Records(chi.URLParam(r, "resource")))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if _, status := s.begin(r); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(chi.URLParam(r, "resource"))
	i := c.index(chi.URLParam(r, "id"))
	if i < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c.records[i])
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, status := s.begin(r)
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(chi.URLParam(r, "resource"))
	c.nextID++
	rec["id"] = c.nextID
	c.records = append(c.records, rec)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, false)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, true)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, merge bool) {
	body, status := s.begin(r)
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	var patch Record
	if err := json.Unmarshal(body, &patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(chi.URLParam(r, "resource"))
	i := c.index(chi.URLParam(r, "id"))
	if i < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	id := c.records[i]["id"]
	next := patch
	if merge {
		next = clone(c.records[i])
		for k, v := range patch {
			next[k] = v
		}
	}
	next["id"] = id
	c.records[i] = next
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, status := s.begin(r); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(chi.URLParam(r, "resource"))
	i := c.index(chi.URLParam(r, "id"))
	if i < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	w.WriteHeader(http.StatusOK)
}

func (c *collection) index(id string) int {
	for i, rec := range c.records {
		if fmt.Sprint(rec["id"]) == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
