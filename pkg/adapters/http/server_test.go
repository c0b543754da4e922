package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rootseek"
	httpadapter "github.com/aretw0/rootseek/pkg/adapters/http"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/observability"
	"github.com/aretw0/rootseek/pkg/runner"
)

func newServer(t *testing.T, opts ...rootseek.Option) (*httptest.Server, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	opts = append(opts, rootseek.WithLifecycleHooks(metrics.Hooks()))
	eng, err := rootseek.New(opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(httpadapter.NewHandler(eng,
		httpadapter.WithMetrics(metrics),
		httpadapter.WithVersion("test"),
	))
	t.Cleanup(srv.Close)
	return srv, metrics
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestServer_Health(t *testing.T) {
	srv, _ := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Equations(t *testing.T) {
	srv, _ := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/equations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var eqs []httpadapter.EquationInfo
	require.NoError(t, json.Unmarshal(body, &eqs))
	require.Len(t, eqs, 2)
	assert.Equal(t, domain.EquationID("f1"), eqs[0].ID)
	assert.Equal(t, "x - 3cos(x) = 0", eqs[0].Label)
	assert.Equal(t, "cos(2x) · x³ = 0", eqs[1].Label)
}

func TestServer_Roots(t *testing.T) {
	srv, _ := newServer(t)

	t.Run("found", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, srv.URL+"/roots", httpadapter.RootsRequest{Equation: "f1", Guesses: []float64{1, -2}})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var out httpadapter.RootsResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, "x - 3cos(x) = 0", out.Label)
		require.Len(t, out.Results, 2)
		assert.True(t, out.Results[0].Found)
		assert.InDelta(t, 1.1701, out.Results[0].Root, 1e-4)
		assert.Equal(t, 2, out.Results[1].Index)
		assert.LessOrEqual(t, math.Abs(out.Results[0].Residual), 1e-6)
	})

	t.Run("unknown equation", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/roots", httpadapter.RootsRequest{Equation: "f9", Guesses: []float64{1}})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("no guesses", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/roots", httpadapter.RootsRequest{Equation: "f1"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/roots", map[string]any{"equation": "f1", "guesses": "1, 2"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_Intersection(t *testing.T) {
	t.Run("reported", func(t *testing.T) {
		srv, _ := newServer(t)
		g := 1.0
		resp, body := do(t, http.MethodPost, srv.URL+"/intersection", httpadapter.IntersectionRequest{Guess: &g})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var out httpadapter.IntersectionResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.Accepted)
		assert.True(t, out.Point.Converged)
		assert.True(t, strings.HasPrefix(out.Message, "The equations intersect at the point: ("))
	})

	t.Run("overflowing residual", func(t *testing.T) {
		srv, _ := newServer(t)
		g := 1e300
		resp, body := do(t, http.MethodPost, srv.URL+"/intersection", httpadapter.IntersectionRequest{Guess: &g})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		require.NotEmpty(t, body)
		assert.Contains(t, string(body), `"residual":null`)

		var out httpadapter.IntersectionResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, 1e300, out.Point.X)
		assert.False(t, out.Point.Converged)
		assert.True(t, math.IsInf(out.Point.Residual, 1))
	})

	t.Run("missing guess", func(t *testing.T) {
		srv, _ := newServer(t)
		resp, _ := do(t, http.MethodPost, srv.URL+"/intersection", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newServer(t)
	do(t, http.MethodPost, srv.URL+"/roots", httpadapter.RootsRequest{Equation: "f1", Guesses: []float64{1}})

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `rootseek_root_searches_total{equation="f1",outcome="found",retry="false"} 1`)
}

func TestServer_Graph(t *testing.T) {
	srv, _ := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/graph", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "graph TD"))
}

func TestServer_SessionFlow(t *testing.T) {
	srv, _ := newServer(t)
	base := srv.URL + "/sessions/web-1"

	resp, body := do(t, http.MethodPost, base, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var rich runner.RichResponse
	require.NoError(t, json.Unmarshal(body, &rich))
	assert.Equal(t, domain.PhaseAwaitGuesses, rich.State.Phase)
	assert.False(t, rich.Terminal)

	// Resuming answers 200 with the same prompt.
	resp, _ = do(t, http.MethodPost, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, in := range []string{"1.0", "0"} {
		resp, body = do(t, http.MethodPost, base+"/input", httpadapter.InputRequest{Input: in})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}

	// The searches ran without further input; the response carries their reports.
	rich = runner.RichResponse{}
	require.NoError(t, json.Unmarshal(body, &rich))
	assert.Equal(t, domain.PhaseAwaitIntersection, rich.State.Phase)
	assert.Contains(t, string(body), "Root near to guess #1 for x - 3cos(x) = 0: 1.170")

	resp, body = do(t, http.MethodPost, base+"/input", httpadapter.InputRequest{Input: "1.0"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rich = runner.RichResponse{}
	require.NoError(t, json.Unmarshal(body, &rich))
	assert.True(t, rich.Terminal)
	assert.Contains(t, string(body), "The equations intersect at the point: (")

	resp, body = do(t, http.MethodGet, base+"/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "# Session web-1")

	resp, body = do(t, http.MethodGet, srv.URL+"/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["web-1"]`, string(body))

	resp, _ = do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SessionFatalInput(t *testing.T) {
	srv, _ := newServer(t)
	base := srv.URL + "/sessions/bad"
	do(t, http.MethodPost, base, nil)

	resp, body := do(t, http.MethodPost, base+"/input", httpadapter.InputRequest{Input: "1.0, nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "nope")

	// The stored session did not move.
	resp, body = do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rich runner.RichResponse
	require.NoError(t, json.Unmarshal(body, &rich))
	assert.Equal(t, "AwaitGuessesEq1", rich.State.Step())
}

func TestServer_UnknownSession(t *testing.T) {
	srv, _ := newServer(t)
	resp, _ := do(t, http.MethodPost, srv.URL+"/sessions/ghost/input", httpadapter.InputRequest{Input: "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
