package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
)

// DefaultGateways are tried in order until one returns the blob.
var DefaultGateways = []string{
	"https://ipfs.io/ipfs/",
	"https://gateway.pinata.cloud/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
}

const defaultPinEndpoint = "https://api.pinata.cloud/pinning/pinJSONToIPFS"

// GatewayStore pins JSON through the Pinata API and reads it back through a
// list of public gateways. An optional Mirror is consulted before the
// gateways on reads and receives a copy of every pinned blob.
type GatewayStore struct {
	pinEndpoint string
	pinJWT      string
	gateways    []string
	mirror      *Mirror
	http        *http.Client
}

// Option configures a GatewayStore.
type Option func(*GatewayStore)

// WithGateways replaces the default gateway list.
func WithGateways(gws []string) Option {
	return func(s *GatewayStore) {
		if len(gws) > 0 {
			s.gateways = gws
		}
	}
}

// WithPinEndpoint overrides the pin API URL (used in tests).
func WithPinEndpoint(url string) Option {
	return func(s *GatewayStore) { s.pinEndpoint = url }
}

// WithMirror attaches an S3-compatible pin mirror.
func WithMirror(m *Mirror) Option {
	return func(s *GatewayStore) { s.mirror = m }
}

func NewGatewayStore(pinJWT string, opts ...Option) *GatewayStore {
	s := &GatewayStore{
		pinEndpoint: defaultPinEndpoint,
		pinJWT:      pinJWT,
		gateways:    DefaultGateways,
		http:        &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type pinataRequest struct {
	PinataContent  any            `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

type pinataMetadata struct {
	Name      string            `json:"name"`
	Keyvalues map[string]string `json:"keyvalues"`
}

// Put pins v and returns its CID. A failure here is the one content-store
// error that blocks a publish outright: without a CID there is nothing to
// anchor on chain.
func (s *GatewayStore) Put(ctx context.Context, v any) (string, error) {
	if s.pinJWT == "" {
		return "", fmt.Errorf("pinata jwt not configured")
	}

	name := "dayjob-job"
	kind := "UNKNOWN"
	if m, ok := v.(map[string]any); ok {
		if t, ok := m["type"].(string); ok {
			kind = t
			if t == "TALENT" {
				name = "dayjob-talent"
			}
		}
	}
	body, err := json.Marshal(pinataRequest{
		PinataContent: v,
		PinataMetadata: pinataMetadata{
			Name:      name,
			Keyvalues: map[string]string{"app": "DAYJOB.FUN", "type": kind},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pinEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.pinJWT)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("pin upload: status %d: %s", resp.StatusCode, detail)
	}

	var out struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("pin upload: decode response: %w", err)
	}
	if out.IpfsHash == "" || !ValidCID(out.IpfsHash) {
		return "", fmt.Errorf("pin upload: response missing valid CID")
	}

	if s.mirror != nil {
		if err := s.mirror.Put(ctx, out.IpfsHash, v); err != nil {
			// the public pin succeeded; a mirror miss only costs read latency
			logger.Warnf("pin mirror write failed for %s: %v", out.IpfsHash, err)
		}
	}
	return out.IpfsHash, nil
}

// Get fetches the blob for c, trying the mirror first when configured, then
// each gateway in order. Returns ErrUnavailable only after all endpoints fail.
func (s *GatewayStore) Get(ctx context.Context, c string, out any) error {
	if !ValidCID(c) {
		return fmt.Errorf("%w: invalid cid %q", ErrUnavailable, c)
	}

	if s.mirror != nil {
		if err := s.mirror.Get(ctx, c, out); err == nil {
			return nil
		}
	}

	for _, gw := range s.gateways {
		if err := s.fetchOne(ctx, gw+c, out); err == nil {
			return nil
		} else {
			logger.Debugf("gateway %s failed for %s: %v", gw, c, err)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, c)
}

func (s *GatewayStore) fetchOne(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
