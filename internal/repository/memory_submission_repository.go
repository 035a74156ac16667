package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/cyberassess-backend/internal/model"
)

// MemorySubmissionRepository keeps submissions in process memory. It enforces
// the same unique fingerprint as the database backends. Data is lost on restart.
type MemorySubmissionRepository struct {
	mu      sync.RWMutex
	records map[string]model.Submission
	byPrint map[model.Fingerprint]string
}

// NewMemorySubmissionRepository creates an empty in-memory repository.
func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{
		records: make(map[string]model.Submission),
		byPrint: make(map[model.Fingerprint]string),
	}
}

// FindByFingerprint returns the submission matching the full duplicate tuple.
func (r *MemorySubmissionRepository) FindByFingerprint(_ context.Context, fp model.Fingerprint) (*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPrint[fp]
	if !ok {
		return nil, ErrNotFound
	}
	s := r.records[id]
	return &s, nil
}

// FindLatestByIdentity returns the newest submission for an email and environment.
func (r *MemorySubmissionRepository) FindLatestByIdentity(_ context.Context, email, environmentName string) (*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.Submission
	for _, s := range r.records {
		if s.Respondent.Email != email || s.Environment.UniqueName != environmentName {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			c := s
			latest = &c
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

// GetByID retrieves a submission by ID.
func (r *MemorySubmissionRepository) GetByID(_ context.Context, id string) (*model.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Insert stores a new submission and sets its ID.
func (r *MemorySubmissionRepository) Insert(_ context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fp := s.Fingerprint()
	if _, exists := r.byPrint[fp]; exists {
		return storeErr("insert submission", KindConflict, ErrConflict)
	}
	s.ID = uuid.NewString()
	r.records[s.ID] = *s
	r.byPrint[fp] = s.ID
	return nil
}

// List returns one page of submissions, newest first.
func (r *MemorySubmissionRepository) List(_ context.Context, q model.ListAssessmentsQuery) ([]model.Submission, error) {
	matched := r.filter(q)
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if q.Skip >= len(matched) {
		return []model.Submission{}, nil
	}
	end := q.Skip + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Skip:end], nil
}

// Count returns the number of submissions matching the filter.
func (r *MemorySubmissionRepository) Count(_ context.Context, q model.ListAssessmentsQuery) (int64, error) {
	return int64(len(r.filter(q))), nil
}

// Statistics aggregates score statistics over the filter.
func (r *MemorySubmissionRepository) Statistics(_ context.Context, q model.ListAssessmentsQuery) (model.AssessmentStatistics, error) {
	matched := r.filter(q)
	if len(matched) == 0 {
		return model.AssessmentStatistics{}, nil
	}

	st := model.AssessmentStatistics{
		TotalAssessments: int64(len(matched)),
		MinScore:         matched[0].Score,
		MaxScore:         matched[0].Score,
	}
	sum := 0
	for _, s := range matched {
		sum += s.Score
		st.MinScore = min(st.MinScore, s.Score)
		st.MaxScore = max(st.MaxScore, s.Score)
	}
	st.AverageScore = float64(sum) / float64(len(matched))
	return st, nil
}

// Delete removes a submission. It reports false when nothing matched.
func (r *MemorySubmissionRepository) Delete(_ context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.records[id]
	if !ok {
		return false, nil
	}
	delete(r.records, id)
	delete(r.byPrint, s.Fingerprint())
	return true, nil
}

// Len returns the number of stored submissions.
func (r *MemorySubmissionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *MemorySubmissionRepository) filter(q model.ListAssessmentsQuery) []model.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email := strings.ToLower(q.Email)
	env := strings.ToLower(q.EnvironmentName)

	out := make([]model.Submission, 0, len(r.records))
	for _, s := range r.records {
		if email != "" && !strings.Contains(strings.ToLower(s.Respondent.Email), email) {
			continue
		}
		if env != "" && !strings.Contains(strings.ToLower(s.Environment.UniqueName), env) {
			continue
		}
		if q.DateFrom != nil && s.CreatedAt.Before(*q.DateFrom) {
			continue
		}
		if q.DateTo != nil && s.CreatedAt.After(*q.DateTo) {
			continue
		}
		out = append(out, s)
	}
	return out
}
