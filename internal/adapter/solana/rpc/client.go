package rpc

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"bossbounty/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/tidwall/gjson"
)

const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"

	DefaultStillActiveCode = 6000
)

// Doer is the subset of the hertz client used here.
type Doer interface {
	Do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error
}

type Config struct {
	Endpoint        string
	Commitment      string
	StillActiveCode int
	Timeout         time.Duration
}

// Client speaks Solana JSON-RPC 2.0 over HTTP.
type Client struct {
	cfg    Config
	http   Doer
	nextID atomic.Uint64
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	opts := []config.ClientOption{
		client.WithDialTimeout(5 * time.Second),
		client.WithClientReadTimeout(cfg.Timeout),
	}
	if strings.HasPrefix(cfg.Endpoint, "https://") {
		opts = append(opts,
			client.WithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
			client.WithDialer(standard.NewDialer()),
		)
	}
	c, err := client.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	return NewClientWithDoer(cfg, c), nil
}

func NewClientWithDoer(cfg Config, doer Doer) *Client {
	if cfg.Commitment == "" {
		cfg.Commitment = CommitmentConfirmed
	}
	if cfg.StillActiveCode == 0 {
		cfg.StillActiveCode = DefaultStillActiveCode
	}
	return &Client{cfg: cfg, http: doer}
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: encode request: %w", method, err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.Endpoint)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	if err := c.http.Do(ctx, req, resp); err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, err)
	}
	if status := resp.StatusCode(); status != consts.StatusOK {
		return gjson.Result{}, fmt.Errorf("%s: http status %d: %s", method, status, truncate(string(resp.Body()), 200))
	}

	parsed := gjson.ParseBytes(resp.Body())
	if rpcErr := parsed.Get("error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
		return gjson.Result{}, c.programError(rpcErr)
	}
	result := parsed.Get("result")
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("%s: response has no result", method)
	}
	return result, nil
}

func (c *Client) programError(rpcErr gjson.Result) *ports.ProgramError {
	perr := &ports.ProgramError{Message: rpcErr.Get("message").String()}
	for _, line := range rpcErr.Get("data.logs").Array() {
		perr.Logs = append(perr.Logs, line.String())
	}
	perr.Code = customCode(rpcErr.Get("data.err"))
	perr.Kind = c.classify(perr)
	return perr
}

func (c *Client) txError(txErr gjson.Result) *ports.ProgramError {
	perr := &ports.ProgramError{Message: "transaction failed: " + txErr.Raw, Code: customCode(txErr)}
	perr.Kind = c.classify(perr)
	return perr
}

func (c *Client) classify(perr *ports.ProgramError) error {
	if perr.Code != 0 && perr.Code == c.cfg.StillActiveCode {
		return ports.ErrRoundStillActive
	}
	for _, line := range perr.Logs {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "stillactive") || strings.Contains(lower, "still active") {
			return ports.ErrRoundStillActive
		}
	}
	return nil
}

// customCode extracts N from {"InstructionError":[idx,{"Custom":N}]}.
func customCode(txErr gjson.Result) int {
	custom := txErr.Get("InstructionError.1.Custom")
	if !custom.Exists() {
		return 0
	}
	return int(custom.Int())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
