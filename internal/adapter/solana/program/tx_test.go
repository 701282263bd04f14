package program

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"testing"

	"bossbounty/internal/domain/game"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

var (
	testProgram = game.MustParseAddress("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	testGame    = addr(7)
	testCaller  = addr(9)
	testWinner  = addr(11)
)

func addr(seed byte) game.Address {
	var a game.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

func indexedAddr(i int) game.Address {
	var a game.Address
	a[0] = byte(i)
	a[1] = byte(i >> 8)
	a[31] = 0xEE
	return a
}

func TestDiscriminator(t *testing.T) {
	require.Equal(t, []byte{46, 213, 237, 176, 190, 113, 182, 94}, Discriminator("feed"))
	require.Equal(t, []byte{149, 95, 181, 242, 94, 90, 158, 162}, Discriminator("claim_reward"))
}

func TestBuildTransaction_Feed(t *testing.T) {
	hash := solana.Hash{0xAB}
	tx, err := BuildTransaction(testCaller, hash, FeedInstruction(testProgram, testGame, testCaller))
	require.NoError(t, err)

	msg := tx.Message
	require.EqualValues(t, 1, msg.Header.NumRequiredSignatures)
	require.EqualValues(t, 0, msg.Header.NumReadonlySignedAccounts)
	require.EqualValues(t, 2, msg.Header.NumReadonlyUnsignedAccounts)
	require.Equal(t, testCaller, msg.AccountKeys[0], "payer first")
	require.ElementsMatch(t, []game.Address{testCaller, testGame, game.SystemProgramID, testProgram}, []game.Address(msg.AccountKeys))
	require.Equal(t, hash, msg.RecentBlockhash)

	require.Len(t, msg.Instructions, 1)
	require.Equal(t, Discriminator("feed"), []byte(msg.Instructions[0].Data))
	require.Len(t, msg.Instructions[0].Accounts, 3)

	raw, err := msg.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, 179)
	require.Equal(t, []byte{1, 0, 2, 4}, raw[:4])
}

func TestBuildTransaction_ClaimMergesDuplicateAccounts(t *testing.T) {
	// The caller claiming its own win appears as both signer and winner.
	tx, err := BuildTransaction(testCaller, solana.Hash{}, ClaimRewardInstruction(testProgram, testGame, testCaller, testCaller))
	require.NoError(t, err)
	require.Len(t, tx.Message.AccountKeys, 4)
	require.EqualValues(t, 1, tx.Message.Header.NumRequiredSignatures)
	require.EqualValues(t, 2, tx.Message.Header.NumReadonlyUnsignedAccounts)

	tx, err = BuildTransaction(testCaller, solana.Hash{}, ClaimRewardInstruction(testProgram, testGame, testCaller, testWinner))
	require.NoError(t, err)
	require.ElementsMatch(t, []game.Address{testCaller, testGame, testWinner, game.SystemProgramID, testProgram}, []game.Address(tx.Message.AccountKeys))
	require.EqualValues(t, 2, tx.Message.Header.NumReadonlyUnsignedAccounts)
}

func TestBuildTransaction_RequiresInstruction(t *testing.T) {
	_, err := BuildTransaction(testCaller, solana.Hash{})
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestBuildTransaction_AccountLimits(t *testing.T) {
	readonly := func(n int) solana.Instruction {
		metas := make(solana.AccountMetaSlice, 0, n)
		for i := 0; i < n; i++ {
			metas = append(metas, solana.NewAccountMeta(indexedAddr(i), false, false))
		}
		return solana.NewInstruction(testProgram, metas, nil)
	}

	// payer + 254 readonly + program fills every index and the readonly
	// unsigned count exactly.
	tx, err := BuildTransaction(testCaller, solana.Hash{}, readonly(254))
	require.NoError(t, err)
	require.Len(t, tx.Message.AccountKeys, 256)
	require.EqualValues(t, 255, tx.Message.Header.NumReadonlyUnsignedAccounts)

	_, err = BuildTransaction(testCaller, solana.Hash{}, readonly(255))
	require.ErrorIs(t, err, ErrMalformedMessage)

	// 256 signers fit the index space but not the one-byte signature count.
	signers := make(solana.AccountMetaSlice, 0, 255)
	for i := 0; i < 255; i++ {
		signers = append(signers, solana.NewAccountMeta(indexedAddr(i), false, true))
	}
	_, err = BuildTransaction(testCaller, solana.Hash{}, solana.NewInstruction(testCaller, signers, nil))
	require.ErrorIs(t, err, ErrMalformedMessage)
	require.ErrorContains(t, err, "256 signers")
}

func TestSignTransaction(t *testing.T) {
	pub, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	payer, err := game.AddressFromBytes(pub)
	require.NoError(t, err)

	tx, err := BuildTransaction(payer, solana.Hash{3}, FeedInstruction(testProgram, testGame, payer))
	require.NoError(t, err)
	raw, err := SignTransaction(tx, func(message []byte) ([]byte, error) {
		return ed25519.Sign(key, message), nil
	})
	require.NoError(t, err)

	require.Equal(t, byte(1), raw[0])
	require.True(t, ed25519.Verify(pub, raw[65:], raw[1:65]))
	require.True(t, bytes.Equal(raw[1:65], tx.Signatures[0][:]))

	_, err = SignTransaction(tx, func([]byte) ([]byte, error) { return []byte{1, 2}, nil })
	require.ErrorContains(t, err, "2 bytes")

	boom := errors.New("device locked")
	_, err = SignTransaction(tx, func([]byte) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
}
