package service

import (
	"errors"

	"github.com/d60-Lab/minitwit/internal/apperr"
	"github.com/d60-Lab/minitwit/internal/repository"
)

// storageErr classifies an error coming out of a repository or transaction.
// Already classified errors pass through; constraint and lock failures that
// escape the precondition checks mean another writer got there first.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, repository.ErrDuplicateKey) || errors.Is(err, repository.ErrWriteConflict) {
		return apperr.Wrap(apperr.ErrConcurrentWrite, err)
	}
	return apperr.Storage(err)
}
