package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_MintVerifyRoundtrip(t *testing.T) {
	tk := &Tokens{Secret: []byte("test-secret"), TTL: time.Hour}

	raw, err := tk.Mint("user-123", "a@b.c")
	require.NoError(t, err)

	sub, err := tk.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestTokens_RejectsWrongSecret(t *testing.T) {
	tk := &Tokens{Secret: []byte("secret-a"), TTL: time.Hour}
	raw, err := tk.Mint("user-123", "a@b.c")
	require.NoError(t, err)

	other := &Tokens{Secret: []byte("secret-b")}
	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsExpired(t *testing.T) {
	tk := &Tokens{Secret: []byte("test-secret"), TTL: -time.Minute}
	raw, err := tk.Mint("user-123", "a@b.c")
	require.NoError(t, err)

	_, err = tk.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsGarbage(t *testing.T) {
	tk := &Tokens{Secret: []byte("test-secret")}
	_, err := tk.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
