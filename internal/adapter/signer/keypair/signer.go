package keypair

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"

	"github.com/gagliardetto/solana-go"
)

const privateKeySize = 64

var selfCheckMessage = []byte("bossbounty keypair check")

// Signer holds a local key in the Solana CLI keypair format: a JSON array of
// 64 byte values, secret seed followed by public key.
type Signer struct {
	path string

	mu  sync.RWMutex
	key solana.PrivateKey
}

// New returns a signer that loads path on Connect.
func New(path string) *Signer {
	return &Signer{path: expandHome(path)}
}

func (s *Signer) Identity() (game.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return game.Address{}, false
	}
	return s.key.PublicKey(), true
}

func (s *Signer) Connect(_ context.Context) (game.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil {
		return s.key.PublicKey(), nil
	}
	if s.path == "" {
		return game.Address{}, fmt.Errorf("%w: no keypair configured", ports.ErrSignerUnavailable)
	}
	key, err := Load(s.path)
	if err != nil {
		return game.Address{}, fmt.Errorf("%w: %v", ports.ErrSignerUnavailable, err)
	}
	s.key = key
	return key.PublicKey(), nil
}

func (s *Signer) Sign(message []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, ports.ErrSignerUnavailable
	}
	sig, err := s.key.Sign(message)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

// Load reads a solana-keygen file and checks that its public half belongs to
// the secret seed.
func Load(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("keypair %s: %w", path, err)
	}
	if len(key) != privateKeySize {
		return nil, fmt.Errorf("keypair %s has %d bytes, want %d", path, len(key), privateKeySize)
	}
	sig, err := key.Sign(selfCheckMessage)
	if err != nil {
		return nil, fmt.Errorf("keypair %s: %w", path, err)
	}
	if !sig.Verify(key.PublicKey(), selfCheckMessage) {
		return nil, fmt.Errorf("keypair %s: public key does not match secret", path)
	}
	return key, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
