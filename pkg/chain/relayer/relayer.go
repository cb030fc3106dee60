// Package relayer is an HTTP client for the FHE relayer that produces
// encrypted inputs and public decryption proofs.
package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	keysPath          = "/v1/keyurl"
	inputProofPath    = "/v1/input-proof"
	publicDecryptPath = "/v1/public-decrypt"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger

	lock   sync.RWMutex
	keyURL string
}

type NewClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, e.g. in tests.
	HTTPClient *http.Client
}

func NewClient(opts NewClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		logger:  log.With("component", "relayer"),
	}
}

type keysResponse struct {
	PublicKeyURL string `json:"publicKeyUrl"`
}

// Initialize fetches the relayer's public key location. The client
// refuses to encrypt or decrypt until it succeeded once.
func (c *Client) Initialize(ctx context.Context) error {
	var resp keysResponse
	if err := c.do(ctx, http.MethodGet, keysPath, nil, &resp); err != nil {
		return err
	}
	if resp.PublicKeyURL == "" {
		return fmt.Errorf("relayer returned no public key url")
	}
	c.lock.Lock()
	c.keyURL = resp.PublicKeyURL
	c.lock.Unlock()
	c.logger.Info("Relayer initialized with key %s", resp.PublicKeyURL)
	return nil
}

func (c *Client) initialized() error {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.keyURL == "" {
		return fmt.Errorf("relayer client not initialized")
	}
	return nil
}

type inputProofRequest struct {
	ContractAddress string  `json:"contractAddress"`
	UserAddress     string  `json:"userAddress"`
	Values          []int64 `json:"values"`
}

type inputProofResponse struct {
	Handles    []string `json:"handles"`
	InputProof string   `json:"inputProof"`
}

func (c *Client) Encrypt(ctx context.Context, contractAddress string, ownerAddress string, value int64) (*chain.EncryptedInput, error) {
	if err := c.initialized(); err != nil {
		return nil, err
	}
	var resp inputProofResponse
	req := inputProofRequest{ContractAddress: contractAddress, UserAddress: ownerAddress, Values: []int64{value}}
	if err := c.do(ctx, http.MethodPost, inputProofPath, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Handles) != 1 {
		return nil, fmt.Errorf("expected one input handle, got %d", len(resp.Handles))
	}
	ciphertext, err := hexutil.Decode(resp.Handles[0])
	if err != nil {
		return nil, fmt.Errorf("invalid input handle: %v", err)
	}
	proof, err := hexutil.Decode(resp.InputProof)
	if err != nil {
		return nil, fmt.Errorf("invalid input proof: %v", err)
	}
	return &chain.EncryptedInput{Ciphertext: ciphertext, Proof: proof}, nil
}

type publicDecryptRequest struct {
	ContractAddress string   `json:"contractAddress"`
	Handles         []string `json:"handles"`
}

type publicDecryptResponse struct {
	ClearValues     string `json:"abiEncodedClearValues"`
	DecryptionProof string `json:"decryptionProof"`
}

func (c *Client) DecryptWithProof(ctx context.Context, handles []string, contractAddress string, submit chain.SubmitFunc) error {
	if err := c.initialized(); err != nil {
		return err
	}
	var resp publicDecryptResponse
	req := publicDecryptRequest{ContractAddress: contractAddress, Handles: handles}
	if err := c.do(ctx, http.MethodPost, publicDecryptPath, req, &resp); err != nil {
		return err
	}
	clearValues, err := hexutil.Decode(resp.ClearValues)
	if err != nil {
		return fmt.Errorf("invalid clear values: %v", err)
	}
	proof, err := hexutil.Decode(resp.DecryptionProof)
	if err != nil {
		return fmt.Errorf("invalid decryption proof: %v", err)
	}
	return submit(ctx, clearValues, proof)
}

// do sends body as JSON and decodes the JSON response into out. Transport
// failures and 5xx responses wrap chain.ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Trace("%s %s", method, path)
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, chain.ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s %s: status %d: %w", method, path, res.StatusCode, chain.ErrUnavailable)
	}
	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, res.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

var _ chain.FHEService = (*Client)(nil)
