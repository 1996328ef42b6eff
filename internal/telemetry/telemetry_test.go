package telemetry_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/fetchstore_sdk_go/internal/telemetry"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch/mock"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
)

func scrape(t *testing.T, m *telemetry.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsRecordLifecycle(t *testing.T) {
	m, err := telemetry.New("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	m.FetchStarted(fetch.Get)
	m.FetchFinished(fetch.Get, status.NotFound, 12*time.Millisecond)
	m.FetchStarted(fetch.Put)
	m.FetchAborted(fetch.Put)
	m.FetchFinished(fetch.Put, status.FetchTimeout, time.Second)

	out := scrape(t, m)
	assert.Contains(t, out, "fetch_requests")
	assert.Contains(t, out, `status="NotFound"`)
	assert.Contains(t, out, `outcome="local"`)
	assert.Contains(t, out, "fetch_aborted")
	assert.Contains(t, out, "fetch_duration")
	assert.Contains(t, out, "fetch_in_flight")
}

func TestMetricsObserveClient(t *testing.T) {
	m, err := telemetry.New("test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	tr := mock.New().On("GET", "/ping", mock.Raw(204, "", nil))
	client := fetch.NewClient(fetch.WithTransport(tr), fetch.WithObserver(m))

	pf, err := fetch.NewRequest("/ping").Start(context.Background(), client)
	require.NoError(t, err)
	res := fetch.Execute[struct{}](pf, client)
	assert.Equal(t, status.NoContent, res.Status)

	out := scrape(t, m)
	assert.Contains(t, out, `method="GET"`)
	assert.Contains(t, out, `outcome="success"`)
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	a, err := telemetry.New("a")
	require.NoError(t, err)
	b, err := telemetry.New("b")
	require.NoError(t, err)
	_ = a.Shutdown(context.Background())
	_ = b.Shutdown(context.Background())
}
