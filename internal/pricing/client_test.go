package pricing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newProviderServer fakes the two provider endpoints. priceBody is served
// verbatim so tests can exercise both the typed and the raw-scan paths.
func newProviderServer(t *testing.T, tokenStatus int, priceStatus int, priceBody string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/common/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			return
		}
		fmt.Fprint(w, `{"body":{"token":"tok-abc"}}`)
	})
	mux.HandleFunc("/product/v1/price/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		if priceStatus != http.StatusOK {
			w.WriteHeader(priceStatus)
			return
		}
		fmt.Fprint(w, priceBody)
	})

	return httptest.NewServer(mux)
}

func TestPriceTypedResponse(t *testing.T) {
	srv := newProviderServer(t, http.StatusOK, http.StatusOK,
		`{"body":{"originalPrice":129000,"salePrice":99000}}`)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger())

	price, err := client.Price(context.Background(), "AB123")
	require.NoError(t, err)
	assert.Equal(t, int64(129000), price)
}

func TestPriceRawScanFallback(t *testing.T) {
	// Not valid JSON at all, but the marker is there
	srv := newProviderServer(t, http.StatusOK, http.StatusOK,
		`<pre>{"originalPrice": 55000,"salePrice":44000}</pre>`)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger())

	price, err := client.Price(context.Background(), "CD456")
	require.NoError(t, err)
	assert.Equal(t, int64(55000), price)
}

func TestPriceTokenFailure(t *testing.T) {
	srv := newProviderServer(t, http.StatusInternalServerError, http.StatusOK, ``)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger())

	_, err := client.Price(context.Background(), "AB123")
	assert.Error(t, err)
}

func TestPriceEndpointFailure(t *testing.T) {
	srv := newProviderServer(t, http.StatusOK, http.StatusNotFound, ``)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger())

	_, err := client.Price(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestPriceMarkerAbsent(t *testing.T) {
	srv := newProviderServer(t, http.StatusOK, http.StatusOK, `{"body":{"salePrice":44000}}`)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger())

	_, err := client.Price(context.Background(), "AB123")
	assert.Error(t, err)
}

func TestScanOriginalPrice(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int64
		wantErr bool
	}{
		{name: "comma terminated", body: `{"originalPrice":12345,"x":1}`, want: 12345},
		{name: "end of body", body: `"originalPrice": 400`, want: 400},
		{name: "surrounding whitespace", body: `"originalPrice":  9900 ,`, want: 9900},
		{name: "marker missing", body: `{"salePrice":1}`, wantErr: true},
		{name: "not a number", body: `"originalPrice":"abc",`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanOriginalPrice([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
