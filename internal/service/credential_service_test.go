package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/minitwit/config"
	"github.com/d60-Lab/minitwit/internal/apperr"
)

func TestCredentialService_Hash(t *testing.T) {
	s := testCreds()
	hash, err := s.Hash("pw")
	require.NoError(t, err)
	require.NoError(t, s.Verify(hash, "pw"))
	assert.ErrorIs(t, s.Verify(hash, "PW"), apperr.ErrInvalidCredentials)
}

func TestCredentialService_Tokens(t *testing.T) {
	s := testCreds()

	token, exp, err := s.IssueToken("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	sub, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	other := NewCredentialService(config.JWTConfig{Secret: "another", Issuer: "minitwit-test", TTL: time.Hour, BcryptCost: 4})
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = s.ParseToken("garbage")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := s.IssueToken("alice")
	require.NoError(t, err)
	_, err = testCreds().ParseToken(expired)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}
