package program

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"bossbounty/internal/domain/game"

	"github.com/gagliardetto/solana-go"
)

// A legacy message indexes accounts with one byte and stores each header
// count in one byte.
const (
	maxAccountKeys = 256
	maxHeaderCount = 255
)

var ErrMalformedMessage = errors.New("malformed message")

// Discriminator is the 8-byte Anchor instruction selector.
func Discriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

// BuildTransaction compiles ixs into an unsigned legacy transaction paid by
// payer.
func BuildTransaction(payer game.Address, blockhash solana.Hash, ixs ...solana.Instruction) (*solana.Transaction, error) {
	if len(ixs) == 0 {
		return nil, fmt.Errorf("%w: no instructions", ErrMalformedMessage)
	}
	if err := checkAccountLimits(payer, ixs); err != nil {
		return nil, err
	}
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return tx, nil
}

// SignTransaction signs the message with the payer's key and returns the
// wire encoding.
func SignTransaction(tx *solana.Transaction, sign func(message []byte) ([]byte, error)) ([]byte, error) {
	if n := tx.Message.Header.NumRequiredSignatures; n != 1 {
		return nil, fmt.Errorf("%w: %d required signatures, only the payer signs", ErrMalformedMessage, n)
	}
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	raw, err := sign(message)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(solana.Signature{}) {
		return nil, fmt.Errorf("signature has %d bytes", len(raw))
	}
	tx.Signatures = []solana.Signature{solana.SignatureFromBytes(raw)}
	return tx.MarshalBinary()
}

func checkAccountLimits(payer game.Address, ixs []solana.Instruction) error {
	type flags struct{ signer, writable bool }
	keys := map[game.Address]*flags{payer: {signer: true, writable: true}}
	touch := func(key game.Address, signer, writable bool) {
		f, ok := keys[key]
		if !ok {
			f = &flags{}
			keys[key] = f
		}
		f.signer = f.signer || signer
		f.writable = f.writable || writable
	}
	for _, ix := range ixs {
		touch(ix.ProgramID(), false, false)
		for _, meta := range ix.Accounts() {
			touch(meta.PublicKey, meta.IsSigner, meta.IsWritable)
		}
	}
	if len(keys) > maxAccountKeys {
		return fmt.Errorf("%w: %d account keys, at most %d", ErrMalformedMessage, len(keys), maxAccountKeys)
	}
	var signers, readonlySigned, readonlyUnsigned int
	for _, f := range keys {
		switch {
		case f.signer:
			signers++
			if !f.writable {
				readonlySigned++
			}
		case !f.writable:
			readonlyUnsigned++
		}
	}
	for name, n := range map[string]int{
		"signers":           signers,
		"readonly signed":   readonlySigned,
		"readonly unsigned": readonlyUnsigned,
	} {
		if n > maxHeaderCount {
			return fmt.Errorf("%w: %d %s accounts, at most %d", ErrMalformedMessage, n, name, maxHeaderCount)
		}
	}
	return nil
}
