package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsIdentity(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(ErrConcurrentWrite, cause)

	assert.ErrorIs(t, err, ErrConcurrentWrite)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrAlreadyFollowing)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "conflicting concurrent write: disk on fire", err.Error())
}

func TestStorage(t *testing.T) {
	assert.NoError(t, Storage(nil))

	raw := errors.New("connection refused")
	err := Storage(raw)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, KindStorageUnavailable, KindOf(err))

	classified := fmt.Errorf("follow: %w", ErrBlockedByTarget)
	assert.Same(t, classified, Storage(classified))
	assert.Equal(t, CodeBlockedByTarget, CodeOf(Storage(classified)))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, "Unknown", Kind(0).String())
	assert.Equal(t, "AuthorizationError", KindAuthorization.String())
}
