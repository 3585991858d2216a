package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"geminiproxy/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "gemini-2.0-flash"

type fakeGenerator struct {
	generate func(ctx context.Context, model, prompt string) (string, error)
	calls    int
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.calls++
	return f.generate(ctx, model, prompt)
}

func replying(text string) *fakeGenerator {
	return &fakeGenerator{generate: func(context.Context, string, string) (string, error) {
		return text, nil
	}}
}

func failing(err error) *fakeGenerator {
	return &fakeGenerator{generate: func(context.Context, string, string) (string, error) {
		return "", err
	}}
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, "/", nil)
	} else {
		r = httptest.NewRequest(method, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestServeHTTP_Preflight(t *testing.T) {
	gen := replying("unused")
	w := serve(NewHTTPHandler(gen, testModel), http.MethodOptions, "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Zero(t, gen.calls)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			gen := replying("unused")
			w := serve(NewHTTPHandler(gen, testModel), method, "")

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
			assert.Zero(t, gen.calls)
		})
	}
}

func TestServeHTTP_MethodNotAllowedBody(t *testing.T) {
	w := serve(NewHTTPHandler(replying("unused"), testModel), http.MethodGet, "")

	assert.Equal(t, "Method Not Allowed\n", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
}

func TestServeHTTP_MissingPrompt(t *testing.T) {
	cases := map[string]string{
		"empty object": `{}`,
		"empty prompt": `{"prompt": ""}`,
		"null prompt":  `{"prompt": null}`,
		"no body":      ``,
		"invalid json": `{"prompt":`,
		"non-string":   `{"prompt": 42}`,
		"other fields": `{"text": "Hello"}`,
		"array body":   `["Hello"]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			gen := replying("unused")
			w := serve(NewHTTPHandler(gen, testModel), http.MethodPost, body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error": "Prompt is required in the request body."}`, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Zero(t, gen.calls)
		})
	}
}

func TestServeHTTP_OversizedBody(t *testing.T) {
	gen := replying("unused")
	h := NewHTTPHandler(gen, testModel, WithMaxBodyBytes(16))

	w := serve(h, http.MethodPost, `{"prompt": "this prompt is far too long"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, gen.calls)
}

func TestServeHTTP_Success(t *testing.T) {
	var gotModel, gotPrompt string
	gen := &fakeGenerator{generate: func(_ context.Context, model, prompt string) (string, error) {
		gotModel, gotPrompt = model, prompt
		return "Hi there!", nil
	}}

	w := serve(NewHTTPHandler(gen, testModel), http.MethodPost, `{"prompt": "Hello"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"analysis": "Hi there!"}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, testModel, gotModel)
	assert.Equal(t, "Hello", gotPrompt)
	assert.Equal(t, 1, gen.calls)
}

func TestServeHTTP_ModelIsNotCallerControlled(t *testing.T) {
	var gotModel string
	gen := &fakeGenerator{generate: func(_ context.Context, model, _ string) (string, error) {
		gotModel = model
		return "ok", nil
	}}

	w := serve(NewHTTPHandler(gen, testModel), http.MethodPost, `{"prompt": "Hello", "model": "gemini-ultra"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testModel, gotModel)
}

func TestServeHTTP_GenerationFailure(t *testing.T) {
	hook := logtest.NewLocal(log.Logger)
	defer hook.Reset()

	gen := failing(errors.New("upstream says: API key not valid"))
	w := serve(NewHTTPHandler(gen, testModel), http.MethodPost, `{"prompt": "x"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "An error occurred while processing your request. Please try again later."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "API key")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			if err, ok := e.Data[logrus.ErrorKey].(error); ok && strings.Contains(err.Error(), "API key not valid") {
				logged = true
			}
		}
	}
	assert.True(t, logged, "upstream error detail should be logged")
}

func TestServeHTTP_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ok := NewHTTPHandler(replying("fine"), testModel, WithMetrics(m))
	bad := NewHTTPHandler(failing(errors.New("boom")), testModel, WithMetrics(m))

	serve(ok, http.MethodPost, `{"prompt": "a"}`)
	serve(ok, http.MethodOptions, "")
	serve(ok, http.MethodGet, "")
	serve(bad, http.MethodPost, `{"prompt": "b"}`)

	expected := `
# HELP gemini_proxy_generation_failures_total Upstream generation calls that returned an error
# TYPE gemini_proxy_generation_failures_total counter
gemini_proxy_generation_failures_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "gemini_proxy_generation_failures_total"))

	expected = `
# HELP gemini_proxy_requests_total Requests answered by the proxy, by HTTP status code
# TYPE gemini_proxy_requests_total counter
gemini_proxy_requests_total{code="200"} 1
gemini_proxy_requests_total{code="204"} 1
gemini_proxy_requests_total{code="405"} 1
gemini_proxy_requests_total{code="500"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "gemini_proxy_requests_total"))
}
