package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelayer(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(NewClientOptions{BaseURL: server.URL + "/", HTTPClient: server.Client()})
}

func relayerMux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/keyurl", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(keysResponse{PublicKeyURL: "https://keys.example/pk"})
	})
	mux.HandleFunc("POST /v1/input-proof", func(w http.ResponseWriter, r *http.Request) {
		var req inputProofRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0xcontract", req.ContractAddress)
		assert.Equal(t, "0xowner", req.UserAddress)
		assert.Equal(t, []int64{12345}, req.Values)
		json.NewEncoder(w).Encode(inputProofResponse{Handles: []string{"0x01"}, InputProof: "0x0203"})
	})
	mux.HandleFunc("POST /v1/public-decrypt", func(w http.ResponseWriter, r *http.Request) {
		var req publicDecryptRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"0xhandle"}, req.Handles)
		json.NewEncoder(w).Encode(publicDecryptResponse{ClearValues: "0x3039", DecryptionProof: "0xaa"})
	})
	return mux
}

func TestClient_RequiresInitialize(t *testing.T) {
	client := newTestRelayer(t, relayerMux(t))
	_, err := client.Encrypt(context.Background(), "0xcontract", "0xowner", 1)
	assert.Error(t, err)
	err = client.DecryptWithProof(context.Background(), []string{"0xhandle"}, "0xcontract", nil)
	assert.Error(t, err)
}

func TestClient_Encrypt(t *testing.T) {
	client := newTestRelayer(t, relayerMux(t))
	require.NoError(t, client.Initialize(context.Background()))

	input, err := client.Encrypt(context.Background(), "0xcontract", "0xowner", 12345)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, input.Ciphertext)
	assert.Equal(t, []byte{0x02, 0x03}, input.Proof)
}

func TestClient_DecryptWithProof(t *testing.T) {
	client := newTestRelayer(t, relayerMux(t))
	require.NoError(t, client.Initialize(context.Background()))

	var gotClear, gotProof []byte
	err := client.DecryptWithProof(context.Background(), []string{"0xhandle"}, "0xcontract", func(ctx context.Context, clearValues []byte, proof []byte) error {
		gotClear, gotProof = clearValues, proof
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x39}, gotClear)
	assert.Equal(t, []byte{0xaa}, gotProof)

	submitErr := errors.New("reverted")
	err = client.DecryptWithProof(context.Background(), []string{"0xhandle"}, "0xcontract", func(ctx context.Context, clearValues []byte, proof []byte) error {
		return submitErr
	})
	assert.ErrorIs(t, err, submitErr)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		wantUnavailable bool
	}{
		{name: "server error", status: http.StatusBadGateway, wantUnavailable: true},
		{name: "client error", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestRelayer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			err := client.Initialize(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantUnavailable, errors.Is(err, chain.ErrUnavailable))
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(NewClientOptions{BaseURL: server.URL})
	err := client.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrUnavailable)
}
