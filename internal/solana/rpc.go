package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultRPCURL is the public mainnet endpoint used when none is configured.
const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

// RPCClient is a minimal JSON-RPC 2.0 client for the two ledger calls this
// service needs: getTransaction and getSignaturesForAddress.
type RPCClient struct {
	url  string
	http *http.Client
}

func NewRPCClient(url string) *RPCClient {
	if url == "" {
		url = DefaultRPCURL
	}
	return &RPCClient{
		url:  url,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc %s: unexpected status %d", method, resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("rpc %s: decode response: %w", method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("rpc %s: %d %s", method, rr.Error.Code, rr.Error.Message)
	}
	return json.Unmarshal(rr.Result, out)
}

// accountKey accepts both the plain-string and the object forms the parsed
// encoding can return.
type accountKey struct {
	value string
}

func (a *accountKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.value = s
		return nil
	}
	var obj struct {
		Pubkey string `json:"pubkey"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	a.value = obj.Pubkey
	return nil
}

type rpcInstruction struct {
	Program string          `json:"program"`
	Parsed  json.RawMessage `json:"parsed"`
}

// memoPayload extracts the memo string from a parsed instruction payload,
// which nodes report either as a bare string or as an object with a "memo"
// field.
func memoPayload(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Memo string `json:"memo"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Memo
	}
	return ""
}

type rpcTransaction struct {
	Slot        uint64 `json:"slot"`
	BlockTime   *int64 `json:"blockTime"`
	Transaction struct {
		Message struct {
			AccountKeys  []accountKey     `json:"accountKeys"`
			Instructions []rpcInstruction `json:"instructions"`
		} `json:"message"`
	} `json:"transaction"`
}

// Resolve fetches a confirmed transaction by signature. A null result means
// the ledger has no record of it yet and is returned as (nil, nil).
func (c *RPCClient) Resolve(ctx context.Context, signature string) (*Transaction, error) {
	params := []any{signature, map[string]any{
		"encoding":                       "jsonParsed",
		"commitment":                     "confirmed",
		"maxSupportedTransactionVersion": 0,
	}}
	var raw json.RawMessage
	if err := c.call(ctx, "getTransaction", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rt rpcTransaction
	if err := json.Unmarshal(raw, &rt); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	tx := &Transaction{Signature: signature, Slot: rt.Slot}
	if rt.BlockTime != nil {
		tx.BlockTime = *rt.BlockTime
	}
	for _, k := range rt.Transaction.Message.AccountKeys {
		tx.AccountKeys = append(tx.AccountKeys, k.value)
	}
	for _, ix := range rt.Transaction.Message.Instructions {
		out := Instruction{Program: ix.Program}
		if ix.Program == MemoProgramName {
			out.Memo = memoPayload(ix.Parsed)
		}
		tx.Instructions = append(tx.Instructions, out)
	}
	return tx, nil
}

type rpcSignature struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Err       any    `json:"err"`
}

// Scan lists recent signatures touching address, most-recent-first. Failed
// transactions are skipped since they anchored nothing.
func (c *RPCClient) Scan(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	params := []any{address, map[string]any{
		"limit":      limit,
		"commitment": "confirmed",
	}}
	var raw []rpcSignature
	if err := c.call(ctx, "getSignaturesForAddress", params, &raw); err != nil {
		return nil, err
	}
	out := make([]SignatureInfo, 0, len(raw))
	for _, s := range raw {
		if s.Err != nil {
			continue
		}
		info := SignatureInfo{Signature: s.Signature, Slot: s.Slot}
		if s.BlockTime != nil {
			info.BlockTime = *s.BlockTime
		}
		out = append(out, info)
	}
	return out, nil
}
