package service

import (
	"context"
	"errors"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/repository"
)

// DuplicateDetector decides whether a submission was already recorded.
// A submission is a duplicate when a stored record has the same email,
// environment, score, total and completed question counts.
type DuplicateDetector struct {
	store SubmissionStore
}

func NewDuplicateDetector(store SubmissionStore) *DuplicateDetector {
	return &DuplicateDetector{store: store}
}

// Find returns the matching record, or nil when s has not been recorded.
func (d *DuplicateDetector) Find(ctx context.Context, s *model.Submission) (*model.Submission, error) {
	existing, err := d.store.FindByFingerprint(ctx, s.Fingerprint())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}
