// internal/faults/transport.go

// Package faults injects latency, transport failures and error statuses into
// outgoing API requests, to exercise how pages report failures.
package faults

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrInjected = errors.New("injected transport failure")

// Action is the kind of fault a rule injects.
type Action string

const (
	Latency Action = "latency"
	Failure Action = "failure"
	Status  Action = "status"
)

// Rule describes one fault.
type Rule struct {
	Name   string
	Action Action
	// Method and Resource restrict the rule; empty matches everything.
	// Resource matches a path segment, e.g. "libros".
	Method   string
	Resource string
	// Probability is the share of matching requests affected, 0.0 to 1.0.
	Probability float64
	Delay       time.Duration
	Code        int
}

func (r Rule) matches(req *http.Request) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, req.Method) {
		return false
	}
	if r.Resource != "" {
		found := false
		for _, seg := range strings.Split(req.URL.Path, "/") {
			if seg == r.Resource {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Injection records one applied fault.
type Injection struct {
	Timestamp time.Time `json:"timestamp"`
	Rule      string    `json:"rule"`
	Action    Action    `json:"action"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
}

// Transport is an http.RoundTripper that applies rules before delegating to
// the wrapped transport. Latency rules add up; the first failure or status
// rule that fires ends the request.
type Transport struct {
	base   http.RoundTripper
	rules  []Rule
	roll   func() float64
	tracer trace.Tracer

	mu         sync.Mutex
	injections []Injection
}

// Option configures a Transport.
type Option func(*Transport)

// WithRoll replaces the random source; it must return values in [0, 1).
func WithRoll(roll func() float64) Option {
	return func(t *Transport) { t.roll = roll }
}

// NewTransport wraps base, or http.DefaultTransport when base is nil.
func NewTransport(base http.RoundTripper, rules []Rule, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:   base,
		rules:  rules,
		roll:   rand.Float64,
		tracer: otel.Tracer("adminsync/faults"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Rules builds the rule set for the configured fault settings: a fixed delay
// on every request, and a failure (or a status when code is non-zero) on a
// share of them.
func Rules(failureRate float64, delay time.Duration, code int) []Rule {
	var rules []Rule
	if delay > 0 {
		rules = append(rules, Rule{Name: "configured-latency", Action: Latency, Probability: 1, Delay: delay})
	}
	if failureRate > 0 {
		r := Rule{Name: "configured-failure", Action: Failure, Probability: failureRate}
		if code != 0 {
			r.Name = "configured-status"
			r.Action = Status
			r.Code = code
		}
		rules = append(rules, r)
	}
	return rules
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for _, rule := range t.rules {
		if !rule.matches(req) || t.roll() >= rule.Probability {
			continue
		}

		ctx, span := t.tracer.Start(req.Context(), "faults.inject",
			trace.WithAttributes(
				attribute.String("fault.rule", rule.Name),
				attribute.String("fault.action", string(rule.Action)),
			),
		)
		t.record(rule, req)

		switch rule.Action {
		case Latency:
			err := sleep(ctx, rule.Delay)
			span.End()
			if err != nil {
				closeBody(req)
				return nil, err
			}
		case Failure:
			span.End()
			closeBody(req)
			return nil, fmt.Errorf("%w (%s)", ErrInjected, rule.Name)
		case Status:
			span.SetAttributes(attribute.Int("fault.status", rule.Code))
			span.End()
			closeBody(req)
			return statusResponse(req, rule.Code), nil
		default:
			span.End()
		}
	}
	return t.base.RoundTrip(req)
}

// Injections returns the faults applied so far.
func (t *Transport) Injections() []Injection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Injection(nil), t.injections...)
}

func (t *Transport) record(rule Rule, req *http.Request) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.injections = append(t.injections, Injection{
		Timestamp: time.Now(),
		Rule:      rule.Name,
		Action:    rule.Action,
		Method:    req.Method,
		URL:       req.URL.String(),
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}

func statusResponse(req *http.Request, code int) *http.Response {
	text := http.StatusText(code)
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, text),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
		Body:          io.NopCloser(strings.NewReader(text)),
		ContentLength: int64(len(text)),
		Request:       req,
	}
}
