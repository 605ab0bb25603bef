package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermesh/ordermesh/core"
)

func testGeocoder(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", func(o *Options) { o.BaseURL = srv.URL })
}

func TestResolveParsesPoint(t *testing.T) {
	geo := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Tverskaya 1", r.URL.Query().Get("geocode"))
		fmt.Fprint(w, `{"response":{"GeoObjectCollection":{"featureMember":[
			{"GeoObject":{"Point":{"pos":"37.617635 55.755814"}}}
		]}}}`)
	})

	coords, err := geo.Resolve(context.Background(), "Tverskaya 1")
	require.NoError(t, err)
	assert.InDelta(t, 37.617635, coords.Lon, 1e-9)
	assert.InDelta(t, 55.755814, coords.Lat, 1e-9)
}

func TestResolveNoMatchIsUnresolved(t *testing.T) {
	geo := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"GeoObjectCollection":{"featureMember":[]}}}`)
	})

	_, err := geo.Resolve(context.Background(), "gibberish")
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestResolveMalformedPointIsUnresolved(t *testing.T) {
	geo := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"GeoObjectCollection":{"featureMember":[
			{"GeoObject":{"Point":{"pos":"not a point"}}}
		]}}}`)
	})

	_, err := geo.Resolve(context.Background(), "somewhere")
	assert.True(t, core.IsValidation(err))
}

func TestResolveServerErrorIsTransient(t *testing.T) {
	geo := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := geo.Resolve(context.Background(), "anywhere")
	require.Error(t, err)
	assert.Equal(t, core.ErrorKindTransient, core.KindOf(err))
}
