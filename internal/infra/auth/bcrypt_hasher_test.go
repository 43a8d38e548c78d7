package auth

import (
	"context"
	"strings"
	"testing"

	domainerrors "passgate/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *bcryptHasher {
	return NewBcryptHasherWithCost(bcrypt.MinCost, 2).(*bcryptHasher)
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := newTestHasher()
	ctx := context.Background()

	password := "s3cretpass"
	hash, err := hasher.Hash(ctx, password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	// Verify the hash can be checked
	matched, err := hasher.Check(ctx, password, hash)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestBcryptHasher_HashUsesFreshSalt(t *testing.T) {
	hasher := newTestHasher()
	ctx := context.Background()

	first, err := hasher.Hash(ctx, "s3cretpass")
	require.NoError(t, err)
	second, err := hasher.Hash(ctx, "s3cretpass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	for _, digest := range []string{first, second} {
		matched, err := hasher.Check(ctx, "s3cretpass", digest)
		require.NoError(t, err)
		assert.True(t, matched)
	}
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := newTestHasher()
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "s3cretpass")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "matching password", password: "s3cretpass", hash: hash, want: true},
		{name: "wrong password", password: "wrongpass", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "empty hash", password: "s3cretpass", hash: "", want: false},
		{name: "malformed hash", password: "s3cretpass", hash: "not-a-bcrypt-digest", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := hasher.Check(ctx, tt.password, tt.hash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, matched)
		})
	}
}

func TestBcryptHasher_Cost(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost+1, 1)

	hash, err := hasher.Hash(context.Background(), "s3cretpass")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestNewBcryptHasherWithCost_FallsBackToDefault(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MaxCost+1, 0).(*bcryptHasher)

	assert.Equal(t, DefaultBcryptCost, hasher.cost)
}

func TestBcryptHasher_ValidatePassword(t *testing.T) {
	hasher := newTestHasher()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "minimum length", password: "12345678"},
		{name: "multibyte runes count once", password: "pässwörd"},
		{name: "too short", password: "short", wantErr: true},
		{name: "empty", password: "", wantErr: true},
		{name: "maximum bytes", password: strings.Repeat("a", 72)},
		{name: "too long", password: strings.Repeat("a", 73), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hasher.ValidatePassword(tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrPasswordPolicy))
		})
	}
}

func TestBcryptHasher_CancelledContext(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost, 1).(*bcryptHasher)
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "s3cretpass")
	require.NoError(t, err)

	// Occupy the only slot so the next caller has to wait.
	require.NoError(t, hasher.pool.Acquire(ctx, 1))
	defer hasher.pool.Release(1)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = hasher.Hash(cancelled, "s3cretpass")
	assert.ErrorIs(t, err, context.Canceled)

	// A comparison that never ran is reported as an error, not as a mismatch.
	matched, err := hasher.Check(cancelled, "s3cretpass", hash)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, matched)
}
