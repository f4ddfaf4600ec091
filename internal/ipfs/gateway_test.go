package ipfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// testCID is a valid CIDv0 used throughout; ValidCID requires real CIDs.
const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestPut_PinsThroughPinata(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"IpfsHash":"` + testCID + `"}`))
	}))
	defer srv.Close()

	s := NewGatewayStore("jwt-123", WithPinEndpoint(srv.URL))
	c, err := s.Put(context.Background(), map[string]any{"type": "JOB", "title": "Go engineer"})
	require.NoError(t, err)
	require.Equal(t, testCID, c)
	require.Equal(t, "Bearer jwt-123", gotAuth)
}

func TestPut_FailsWithoutJWT(t *testing.T) {
	s := NewGatewayStore("")
	_, err := s.Put(context.Background(), map[string]any{"type": "JOB"})
	require.Error(t, err)
}

func TestPut_FailsOnPinError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	s := NewGatewayStore("jwt", WithPinEndpoint(srv.URL))
	_, err := s.Put(context.Background(), map[string]any{"type": "TALENT"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestGet_FallsBackAcrossGateways(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer dead.Close()
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Go engineer","company":"dayjob"}`))
	}))
	defer alive.Close()

	s := NewGatewayStore("", WithGateways([]string{dead.URL + "/ipfs/", alive.URL + "/ipfs/"}))
	var out map[string]any
	require.NoError(t, s.Get(context.Background(), testCID, &out))
	require.Equal(t, "Go engineer", out["title"])
}

func TestGet_UnavailableWhenAllGatewaysFail(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer dead.Close()

	s := NewGatewayStore("", WithGateways([]string{dead.URL + "/a/", dead.URL + "/b/"}))
	var out map[string]any
	err := s.Get(context.Background(), testCID, &out)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGet_RejectsInvalidCID(t *testing.T) {
	s := NewGatewayStore("")
	var out map[string]any
	err := s.Get(context.Background(), "not-a-cid", &out)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestValidCID(t *testing.T) {
	require.True(t, ValidCID(testCID))
	require.True(t, ValidCID("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"))
	require.False(t, ValidCID(""))
	require.False(t, ValidCID("bafy123"))
}
