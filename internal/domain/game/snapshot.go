package game

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

const LamportsPerSOL = 1_000_000_000

// account layout: discriminator(8) | last_feeder(32) | last_fed_timestamp(i64) | time_to_live(i64)
const (
	accountDiscriminatorLen = 8
	accountDataMinLen       = accountDiscriminatorLen + AddressLength + 8 + 8
)

var ErrInvalidAccountData = errors.New("invalid game account data")

// Snapshot is the remote game state as of one successful fetch. It is never
// partially updated; a newer fetch replaces it wholesale.
type Snapshot struct {
	LastFeeder       Address `json:"last_feeder"`
	LastFedTimestamp int64   `json:"last_fed_timestamp"`
	TimeToLive       int64   `json:"time_to_live"`
	Balance          uint64  `json:"balance_lamports"`
}

type Account struct {
	LastFeeder       Address
	LastFedTimestamp int64
	TimeToLive       int64
}

// DecodeAccount reads the Borsh body that follows the Anchor discriminator.
// Trailing bytes are ignored.
func DecodeAccount(data []byte) (Account, error) {
	if len(data) < accountDataMinLen {
		return Account{}, fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidAccountData, len(data), accountDataMinLen)
	}
	var acc Account
	if err := bin.NewBorshDecoder(data[accountDiscriminatorLen:]).Decode(&acc); err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	if acc.TimeToLive < 0 {
		return Account{}, fmt.Errorf("%w: negative time_to_live %d", ErrInvalidAccountData, acc.TimeToLive)
	}
	return acc, nil
}

// EncodeAccount is the inverse of DecodeAccount with a zero discriminator.
func EncodeAccount(acc Account) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, accountDiscriminatorLen))
	if err := bin.NewBorshEncoder(&buf).Encode(acc); err != nil {
		panic(fmt.Sprintf("encode game account: %v", err))
	}
	return buf.Bytes()
}

func NewSnapshot(acc Account, balance uint64) Snapshot {
	return Snapshot{
		LastFeeder:       acc.LastFeeder,
		LastFedTimestamp: acc.LastFedTimestamp,
		TimeToLive:       acc.TimeToLive,
		Balance:          balance,
	}
}

func (s Snapshot) IsWaiting() bool {
	return s.LastFedTimestamp == 0
}

func (s Snapshot) BalanceSOL() float64 {
	return float64(s.Balance) / LamportsPerSOL
}
