package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stargate/pkg/testutil"
)

func newHandler() *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealth_AllChecksPass(t *testing.T) {
	h := newHandler().
		Add("database", func(context.Context) error { return nil }).
		Add("redis", nil)

	rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[Response](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]string{"database": "ok"}, resp.Checks)
}

func TestHealth_FailingCheckIs503(t *testing.T) {
	h := newHandler().
		Add("database", func(context.Context) error { return nil }).
		Add("redis", func(context.Context) error { return errors.New("connection refused") })

	rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := testutil.UnmarshalResponse[Response](t, rr)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unavailable", resp.Checks["redis"])
	assert.Equal(t, "ok", resp.Checks["database"])
}
