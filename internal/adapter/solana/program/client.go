package program

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bossbounty/internal/adapter/solana/rpc"
	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gagliardetto/solana-go"
)

const (
	defaultConfirmInterval = 500 * time.Millisecond
	defaultConfirmPolls    = 60
)

var ErrSignerMismatch = errors.New("signer identity does not match caller")

type Chain interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	BlockHeight(ctx context.Context) (uint64, error)
	SendTransaction(ctx context.Context, raw []byte) (string, error)
	SignatureStatus(ctx context.Context, sig string) (rpc.SignatureStatus, bool, error)
}

// Client submits feed and claim_reward transactions and waits until they
// land at confirmed commitment.
type Client struct {
	Chain       Chain
	Signer      ports.Signer
	ProgramID   game.Address
	GameAccount game.Address

	ConfirmInterval time.Duration
	ConfirmPolls    int
}

func (c *Client) Feed(ctx context.Context, caller game.Address) (string, error) {
	return c.submit(ctx, "feed", caller, FeedInstruction(c.ProgramID, c.GameAccount, caller))
}

func (c *Client) ClaimReward(ctx context.Context, caller, winner game.Address) (string, error) {
	return c.submit(ctx, "claim_reward", caller, ClaimRewardInstruction(c.ProgramID, c.GameAccount, caller, winner))
}

func (c *Client) submit(ctx context.Context, name string, caller game.Address, ix solana.Instruction) (string, error) {
	identity, ok := c.Signer.Identity()
	if !ok {
		return "", ports.ErrSignerUnavailable
	}
	if identity != caller {
		return "", fmt.Errorf("%s: %w", name, ErrSignerMismatch)
	}

	blockhash, lastValid, err := c.Chain.LatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	tx, err := BuildTransaction(caller, blockhash, ix)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	raw, err := SignTransaction(tx, c.Signer.Sign)
	if err != nil {
		return "", fmt.Errorf("%s: sign: %w", name, err)
	}

	signature, err := c.Chain.SendTransaction(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	hlog.CtxInfof(ctx, "%s submitted signature=%s caller=%s", name, signature, caller)

	if err := c.confirm(ctx, signature, lastValid); err != nil {
		return signature, fmt.Errorf("%s %s: %w", name, signature, err)
	}
	return signature, nil
}

func (c *Client) confirm(ctx context.Context, signature string, lastValid uint64) error {
	interval := c.ConfirmInterval
	if interval <= 0 {
		interval = defaultConfirmInterval
	}
	polls := c.ConfirmPolls
	if polls <= 0 {
		polls = defaultConfirmPolls
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	for i := 0; i < polls; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		status, found, err := c.Chain.SignatureStatus(ctx, signature)
		switch {
		case err != nil:
			hlog.CtxWarnf(ctx, "signature status failed signature=%s err=%v", signature, err)
		case found && status.Err != nil:
			return status.Err
		case found && status.Landed():
			return nil
		case !found && lastValid > 0:
			height, err := c.Chain.BlockHeight(ctx)
			if err == nil && height > lastValid {
				return ports.ErrTransactionExpired
			}
		}
		timer.Reset(interval)
	}
	return fmt.Errorf("%w: not confirmed after %d polls", ports.ErrTransactionExpired, polls)
}
