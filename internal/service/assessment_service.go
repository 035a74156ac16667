package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stemsi/cyberassess-backend/internal/model"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// AssessmentService serves the admin views over stored submissions.
type AssessmentService struct {
	store SubmissionStore
	log   zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(store SubmissionStore, log zerolog.Logger) *AssessmentService {
	return &AssessmentService{
		store: store,
		log:   log.With().Str("component", "assessment_service").Logger(),
	}
}

// NormalizeListQuery clamps paging parameters into their allowed range.
func NormalizeListQuery(q model.ListAssessmentsQuery) model.ListAssessmentsQuery {
	if q.Limit < 1 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Skip < 0 {
		q.Skip = 0
	}
	return q
}

// List returns one page of submissions, newest first, with the total count and
// score statistics over the same filter.
func (s *AssessmentService) List(ctx context.Context, q model.ListAssessmentsQuery) (*model.ListAssessmentsResult, error) {
	q = NormalizeListQuery(q)
	res := &model.ListAssessmentsResult{Limit: q.Limit, Skip: q.Skip}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.store.List(gctx, q)
		if err != nil {
			return fmt.Errorf("list assessments: %w", err)
		}
		res.Items = items
		return nil
	})
	g.Go(func() error {
		total, err := s.store.Count(gctx, q)
		if err != nil {
			return fmt.Errorf("count assessments: %w", err)
		}
		res.Total = total
		return nil
	})
	g.Go(func() error {
		stats, err := s.store.Statistics(gctx, q)
		if err != nil {
			return fmt.Errorf("assessment statistics: %w", err)
		}
		stats.AverageScore = math.Round(stats.AverageScore*10) / 10
		res.Statistics = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if res.Items == nil {
		res.Items = []model.Submission{}
	}
	return res, nil
}

// Get retrieves one submission by id.
func (s *AssessmentService) Get(ctx context.Context, id string) (*model.Submission, error) {
	return s.store.GetByID(ctx, id)
}

// Delete removes a submission. deleted is false when no record had that id.
func (s *AssessmentService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("id", id).Msg("assessment deleted")
	}
	return deleted, nil
}
