package service

import (
	"context"

	"github.com/stemsi/cyberassess-backend/internal/model"
)

// SubmissionStore persists assessment submissions. Implementations return
// *repository.StoreError for failures so callers can tell transient faults
// from fatal ones.
type SubmissionStore interface {
	FindByFingerprint(ctx context.Context, fp model.Fingerprint) (*model.Submission, error)
	FindLatestByIdentity(ctx context.Context, email, environmentName string) (*model.Submission, error)
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	Insert(ctx context.Context, s *model.Submission) error
	List(ctx context.Context, q model.ListAssessmentsQuery) ([]model.Submission, error)
	Count(ctx context.Context, q model.ListAssessmentsQuery) (int64, error)
	Statistics(ctx context.Context, q model.ListAssessmentsQuery) (model.AssessmentStatistics, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AdminStore persists dashboard users.
type AdminStore interface {
	GetByID(ctx context.Context, id string) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, a *model.Admin) error
}

// Notifier receives every newly persisted submission. It must not block.
type Notifier interface {
	Notify(s model.Submission)
}
