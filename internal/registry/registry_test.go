// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/inventor-scout/internal/cache"
	"github.com/meshintel/inventor-scout/internal/httputil"
	"github.com/meshintel/inventor-scout/pkg/errors"
	"github.com/meshintel/inventor-scout/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

const sampleRegistryJSON = `{
  "patents": [
    {
      "patent_title": "Method for testing patents",
      "patent_date": "2023-03-14",
      "inventors": [
        {"inventor_name_first": "Jane", "inventor_name_last": "Doe"},
        {"inventor_name_first": "John Q.", "inventor_name_last": "Public"},
        {"inventor_name_first": "", "inventor_name_last": "et al."}
      ]
    }
  ]
}`

// newTestClient points the package at an httptest server and returns the
// client plus a counter of requests actually issued.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	oldBase := registryAPIBase
	registryAPIBase = ts.URL + "/"
	t.Cleanup(func() { registryAPIBase = oldBase })

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	return NewClient(store, types.RegistryConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "inventor-scout/test"},
		MaxRetries: 2,
	}, nil), &calls
}

func TestFetchSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleRegistryJSON))
	})

	rec, err := client.Fetch(context.Background(), "US7654321B2")
	require.NoError(t, err)

	assert.Equal(t, "US7654321", rec.PatentNumber)
	assert.Equal(t, "Method for testing patents", rec.Title)
	assert.Equal(t, []string{"Jane Doe", "John Q. Public"}, rec.Inventors)
	assert.Equal(t, time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC), rec.PublicationDate)
	assert.Equal(t, "registry", rec.Source)
}

func TestFetchSecondCallHitsCache(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRegistryJSON))
	})

	first, err := client.Fetch(context.Background(), "US7654321")
	require.NoError(t, err)
	second, err := client.Fetch(context.Background(), "US7654321")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "second fetch must not touch the network")
	assert.Equal(t, first, second)
}

func TestFetchNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"patents": []}`))
	})

	_, err := client.Fetch(context.Background(), "US9999999")
	assert.True(t, errors.IsNotFound(err))
}

func TestFetchMalformedIdentifier(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Fetch(context.Background(), "INVALID_ID")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestFetchParseErrorOnSchemaDrift(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>the API moved</html>`))
	})

	_, err := client.Fetch(context.Background(), "US7654321")
	assert.True(t, errors.IsParse(err))
}

func TestFetchTransientOnServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Fetch(context.Background(), "US7654321")
	assert.True(t, errors.IsTransient(err))
}

func TestFetchErrorNotCached(t *testing.T) {
	fail := int32(1)
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&fail) == 1 {
			w.Write([]byte(`{"patents": []}`))
			return
		}
		w.Write([]byte(sampleRegistryJSON))
	})

	_, err := client.Fetch(context.Background(), "US7654321")
	require.True(t, errors.IsNotFound(err))

	atomic.StoreInt32(&fail, 0)
	rec, err := client.Fetch(context.Background(), "US7654321")
	require.NoError(t, err)
	assert.Equal(t, "Method for testing patents", rec.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestFetchSurvivesCacheWriteFailure(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(sampleRegistryJSON))
	}))
	t.Cleanup(ts.Close)

	oldBase := registryAPIBase
	registryAPIBase = ts.URL + "/"
	t.Cleanup(func() { registryAPIBase = oldBase })

	// Break the registry cache domain so every write fails.
	dir := t.TempDir()
	store, err := cache.NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "registry")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "registry"), []byte("in the way"), 0o644))

	client := NewClient(store, types.RegistryConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "inventor-scout/test"},
	}, nil)

	// The fetched record is good; a failed cache write must not discard it.
	rec, err := client.Fetch(context.Background(), "US7654321")
	require.NoError(t, err)
	assert.Equal(t, "Method for testing patents", rec.Title)

	// Nothing was cached, so the next fetch goes to the network again.
	_, err = client.Fetch(context.Background(), "US7654321")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"US7654321B2", "US7654321", true},
		{"7654321", "US7654321", true},
		{" us20230012345A1 ", "US20230012345", true},
		{"INVALID_ID", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := Canonical(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.True(t, errors.IsNotFound(err), tt.in)
		}
	}
}

func TestFilterInventors(t *testing.T) {
	in := []string{"Jane  Doe", "John Q. Public", "et al.", "", "  ", "jane doe", "and others"}
	assert.Equal(t, []string{"Jane Doe", "John Q. Public"}, FilterInventors(in))
}

func TestIsPerson(t *testing.T) {
	assert.True(t, IsPerson("Jane Doe"))
	assert.False(t, IsPerson("et al."))
	assert.False(t, IsPerson("Et Al"))
	assert.False(t, IsPerson("   "))
}
