package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid operator key")
)

type VerifyRequest struct {
	OperatorKey string
}

// VerifyUseCase guards the endpoints that spend from the local wallet. With
// no key configured every request passes.
type VerifyUseCase struct {
	salt []byte
	hash []byte
}

func NewVerifyUseCase(operatorKey string) (VerifyUseCase, error) {
	operatorKey = strings.TrimSpace(operatorKey)
	if operatorKey == "" {
		return VerifyUseCase{}, nil
	}
	salt, err := randomBytes(16)
	if err != nil {
		return VerifyUseCase{}, err
	}
	return VerifyUseCase{salt: salt, hash: credentialHash(salt, operatorKey)}, nil
}

func (u VerifyUseCase) Enabled() bool {
	return len(u.hash) > 0
}

func (u VerifyUseCase) Execute(_ context.Context, req VerifyRequest) error {
	if !u.Enabled() {
		return nil
	}
	key := strings.TrimSpace(req.OperatorKey)
	if key == "" {
		return ErrInvalidRequest
	}
	got := credentialHash(u.salt, key)
	if subtle.ConstantTimeCompare(got, u.hash) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func credentialHash(salt []byte, key string) []byte {
	b := make([]byte, 0, len(salt)+len(key))
	b = append(b, salt...)
	b = append(b, key...)
	sum := sha256.Sum256(b)
	return sum[:]
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
