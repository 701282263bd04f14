package rpc

import (
	"context"
	"encoding/base64"
	"fmt"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"

	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"
)

func (c *Client) GetAccountData(ctx context.Context, addr game.Address) ([]byte, error) {
	result, err := c.call(ctx, "getAccountInfo", addr.String(), map[string]any{
		"encoding":   "base64",
		"commitment": c.cfg.Commitment,
	})
	if err != nil {
		return nil, err
	}
	value := result.Get("value")
	if !value.Exists() || value.Type == gjson.Null {
		return nil, fmt.Errorf("account %s: %w", addr, ports.ErrNotFound)
	}
	data, err := base64.StdEncoding.DecodeString(value.Get("data.0").String())
	if err != nil {
		return nil, fmt.Errorf("account %s: decode data: %w", addr, err)
	}
	return data, nil
}

func (c *Client) GetBalance(ctx context.Context, addr game.Address) (uint64, error) {
	result, err := c.call(ctx, "getBalance", addr.String(), map[string]any{
		"commitment": c.cfg.Commitment,
	})
	if err != nil {
		return 0, err
	}
	return result.Get("value").Uint(), nil
}

func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	result, err := c.call(ctx, "getLatestBlockhash", map[string]any{
		"commitment": c.cfg.Commitment,
	})
	if err != nil {
		return solana.Hash{}, 0, err
	}
	hash, err := solana.HashFromBase58(result.Get("value.blockhash").String())
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("getLatestBlockhash: malformed blockhash %q: %w", result.Get("value.blockhash").String(), err)
	}
	return hash, result.Get("value.lastValidBlockHeight").Uint(), nil
}

func (c *Client) BlockHeight(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "getBlockHeight", map[string]any{
		"commitment": c.cfg.Commitment,
	})
	if err != nil {
		return 0, err
	}
	return result.Uint(), nil
}

// SendTransaction submits a signed wire transaction with preflight checks
// and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, raw []byte) (string, error) {
	result, err := c.call(ctx, "sendTransaction", base64.StdEncoding.EncodeToString(raw), map[string]any{
		"encoding":            "base64",
		"preflightCommitment": c.cfg.Commitment,
	})
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

type SignatureStatus struct {
	Confirmation string
	Err          *ports.ProgramError
}

func (s SignatureStatus) Landed() bool {
	return s.Confirmation == CommitmentConfirmed || s.Confirmation == CommitmentFinalized
}

func (c *Client) SignatureStatus(ctx context.Context, sig string) (SignatureStatus, bool, error) {
	result, err := c.call(ctx, "getSignatureStatuses", []string{sig}, map[string]any{
		"searchTransactionHistory": false,
	})
	if err != nil {
		return SignatureStatus{}, false, err
	}
	status := result.Get("value.0")
	if !status.Exists() || status.Type == gjson.Null {
		return SignatureStatus{}, false, nil
	}
	out := SignatureStatus{Confirmation: status.Get("confirmationStatus").String()}
	if txErr := status.Get("err"); txErr.Exists() && txErr.Type != gjson.Null {
		out.Err = c.txError(txErr)
	}
	return out, true, nil
}
