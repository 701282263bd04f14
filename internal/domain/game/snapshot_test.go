package game

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestDecodeAccount_RoundTrip(t *testing.T) {
	feeder := MustParseAddress("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	want := Account{LastFeeder: feeder, LastFedTimestamp: 1_700_000_123, TimeToLive: 60}

	got, err := DecodeAccount(EncodeAccount(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("decode mismatch: got %+v want %+v", got, want)
	}
}

func TestDecodeAccount_AnchorLayout(t *testing.T) {
	feeder := MustParseAddress("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	data := []byte{0xd8, 0x92, 0x6b, 0x5e, 0x68, 0x4b, 0xb6, 0xb1}
	data = append(data, feeder[:]...)
	data = binary.LittleEndian.AppendUint64(data, 1_700_000_123)
	data = binary.LittleEndian.AppendUint64(data, 45)

	got, err := DecodeAccount(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Account{LastFeeder: feeder, LastFedTimestamp: 1_700_000_123, TimeToLive: 45}
	if got != want {
		t.Fatalf("decode mismatch: got %+v want %+v", got, want)
	}

	neg := append(append([]byte(nil), data[:48]...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	if _, err := DecodeAccount(neg); !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData for negative ttl, got %v", err)
	}
}

func TestDecodeAccount_ShortData(t *testing.T) {
	_, err := DecodeAccount(make([]byte, 40))
	if !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData, got %v", err)
	}
}

func TestDecodeAccount_IgnoresTrailingBytes(t *testing.T) {
	data := append(EncodeAccount(Account{LastFedTimestamp: 5, TimeToLive: 9}), 0xde, 0xad)
	got, err := DecodeAccount(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.LastFedTimestamp != 5 || got.TimeToLive != 9 {
		t.Fatalf("unexpected account %+v", got)
	}
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("11111111111111111111111111111111")
	if err != nil {
		t.Fatalf("parse system program: %v", err)
	}
	if a != SystemProgramID {
		t.Fatalf("expected system program id, got %s", a)
	}
	if _, err := ParseAddress("not-base58-0OIl"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := ParseAddress("2g"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress for short key, got %v", err)
	}
}
