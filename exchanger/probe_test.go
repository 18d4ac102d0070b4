package exchanger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProxy answers absolute-form requests itself, which is all a plain http proxy sees.
func fakeProxy(t *testing.T, status int, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "exchange.test", r.URL.Host)
		w.WriteHeader(status)
	}))
}

func TestProbeGoesThroughProxy(t *testing.T) {
	var hits int32
	proxy := fakeProxy(t, http.StatusOK, &hits)
	defer proxy.Close()

	err := Probe(context.Background(), "http://exchange.test/api/v3/exchangeInfo", proxy.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestProbeFailsOnNon200(t *testing.T) {
	var hits int32
	proxy := fakeProxy(t, http.StatusForbidden, &hits)
	defer proxy.Close()

	err := Probe(context.Background(), "http://exchange.test/", proxy.URL, time.Second)
	assert.ErrorContains(t, err, "http 403")
}

func TestProbeFailsWhenProxyIsDown(t *testing.T) {
	var hits int32
	proxy := fakeProxy(t, http.StatusOK, &hits)
	url := proxy.URL
	proxy.Close()

	err := Probe(context.Background(), "http://exchange.test/", url, time.Second)
	assert.Error(t, err)
}

func TestProbeSkippedForDirect(t *testing.T) {
	assert.NoError(t, Probe(context.Background(), "http://exchange.test/", "direct", time.Second))
	assert.NoError(t, Probe(context.Background(), "http://exchange.test/", "", time.Second))
}
