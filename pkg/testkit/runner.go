package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// Option adjusts how scenarios are fired.
type Option func(*runner)

type runner struct {
	headers map[string]string
}

// WithHeader sends key: value on every request unless the scenario is
// anonymous or sets the header itself.
func WithHeader(key, value string) Option {
	return func(r *runner) { r.headers[key] = value }
}

func newRunner(opts []Option) *runner {
	r := &runner{headers: map[string]string{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a single scenario file against handler.
func Run(t *testing.T, handler http.Handler, scenarioPath string, opts ...Option) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}
	r := newRunner(opts)
	t.Run(s.Name, func(t *testing.T) {
		r.run(t, handler, s)
	})
}

// RunDir runs every scenario in dir as a subtest, in file-name order.
func RunDir(t *testing.T, handler http.Handler, dir string, opts ...Option) {
	t.Helper()

	paths, err := scenarioFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	r := newRunner(opts)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			r.run(t, handler, s)
		})
	}
}

func (r *runner) run(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	var body io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if !s.Anonymous {
		for k, v := range r.headers {
			req.Header.Set(k, v)
		}
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	AssertHeaders(t, s, rec.Header())

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
			return
		}
		AssertJSONBody(t, s, expected, rec.Body.Bytes())
	}
}
