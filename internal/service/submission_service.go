package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/metrics"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/repository"
	"github.com/stemsi/cyberassess-backend/internal/scoring"
	"github.com/stemsi/cyberassess-backend/internal/validator"
)

// ErrSubmissionFailed is returned when a submission could not be recorded,
// either after exhausting retries or on a non-retryable store error.
var ErrSubmissionFailed = errors.New("submission could not be recorded")

// ValidationError carries per-field messages for a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid submission: " + strings.Join(keys, ", ")
}

// RetryPolicy bounds the attempts made for one submission.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy waits 2s, 4s, 8s and 10s between five attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, InitialInterval: 2 * time.Second, MaxInterval: 10 * time.Second}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = 2
	b.MaxInterval = p.MaxInterval
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// SubmissionOption configures a SubmissionService.
type SubmissionOption func(*SubmissionService)

// WithRetryTimer replaces the timer used between attempts.
func WithRetryTimer(newTimer func() backoff.Timer) SubmissionOption {
	return func(s *SubmissionService) { s.newTimer = newTimer }
}

// WithClock replaces the time source used for record timestamps.
func WithClock(now func() time.Time) SubmissionOption {
	return func(s *SubmissionService) { s.now = now }
}

// WithMetrics records submission outcomes and attempts on m.
func WithMetrics(m *metrics.Metrics) SubmissionOption {
	return func(s *SubmissionService) { s.metrics = m }
}

// SubmissionService records assessment submissions exactly once per distinct
// outcome and hands every successful outcome to the notifier.
type SubmissionService struct {
	store    SubmissionStore
	detector *DuplicateDetector
	notifier Notifier
	policy   RetryPolicy
	newTimer func() backoff.Timer
	now      func() time.Time
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(store SubmissionStore, notifier Notifier, policy RetryPolicy, log zerolog.Logger, opts ...SubmissionOption) *SubmissionService {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	s := &SubmissionService{
		store:    store,
		detector: NewDuplicateDetector(store),
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
		log:      log.With().Str("component", "submission_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type attemptOutcome struct {
	status   model.SubmitStatus
	record   *model.Submission
	conflict bool
}

// Submit validates, scores and persists a submission.
func (s *SubmissionService) Submit(ctx context.Context, sub model.Submission) (*model.SubmitResult, error) {
	start := s.now()

	if fields := s.Validate(&sub); len(fields) > 0 {
		s.metrics.ObserveSubmission("validation_error", time.Since(start))
		return nil, &ValidationError{Fields: fields}
	}

	rec := s.prepare(sub)
	log := s.log.With().
		Str("email", rec.Respondent.Email).
		Str("environment", rec.Environment.UniqueName).
		Int("score", rec.Score).
		Logger()

	var (
		attempts int
		outcome  *attemptOutcome
	)
	op := func() error {
		attempts++
		out, err := s.attempt(ctx, rec)
		if err == nil {
			outcome = out
			if out.conflict {
				s.metrics.ObserveAttempt("conflict")
			} else {
				s.metrics.ObserveAttempt("ok")
			}
			return nil
		}
		if repository.IsTransient(err) {
			s.metrics.ObserveAttempt("transient")
			log.Warn().Err(err).Int("attempt", attempts).Msg("transient store error")
			return err
		}
		s.metrics.ObserveAttempt("fatal")
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		log.Info().Dur("wait", wait).Int("attempt", attempts).Msg("retrying submission")
	}

	var timer backoff.Timer
	if s.newTimer != nil {
		timer = s.newTimer()
	}
	if err := backoff.RetryNotifyWithTimer(op, s.policy.backOff(ctx), notify, timer); err != nil {
		s.metrics.ObserveSubmission("failed", time.Since(start))
		log.Error().Err(err).Int("attempts", attempts).Msg("submission failed")
		return nil, fmt.Errorf("%w (attempts=%d): %w", ErrSubmissionFailed, attempts, err)
	}

	result := &model.SubmitResult{
		Status:   outcome.status,
		ID:       outcome.record.ID,
		Score:    outcome.record.Score,
		Attempts: attempts,
	}
	s.metrics.ObserveSubmission(string(outcome.status), time.Since(start))

	if outcome.status == model.SubmitCreated {
		log.Info().Str("id", result.ID).Int("attempts", attempts).Msg("submission recorded")
	} else {
		log.Info().Str("id", result.ID).Msg("duplicate submission, returning existing record")
	}
	// Duplicates notify again so a lost acknowledgement can be recovered by resubmitting.
	s.notifier.Notify(*outcome.record)
	return result, nil
}

// Preview validates and scores a submission without storing it.
func (s *SubmissionService) Preview(sub model.Submission) (*model.Submission, error) {
	if fields := s.Validate(&sub); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return s.prepare(sub), nil
}

// attempt runs one detect-then-insert cycle.
func (s *SubmissionService) attempt(ctx context.Context, rec *model.Submission) (*attemptOutcome, error) {
	existing, err := s.detector.Find(ctx, rec)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &attemptOutcome{status: model.SubmitAlreadyExists, record: existing}, nil
	}

	candidate := *rec
	if err := s.store.Insert(ctx, &candidate); err != nil {
		if repository.IsConflict(err) {
			return s.resolveConflict(ctx, rec, err)
		}
		return nil, err
	}
	return &attemptOutcome{status: model.SubmitCreated, record: &candidate}, nil
}

// resolveConflict finds the record that won a concurrent insert.
func (s *SubmissionService) resolveConflict(ctx context.Context, rec *model.Submission, conflictErr error) (*attemptOutcome, error) {
	existing, err := s.detector.Find(ctx, rec)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing, err = s.store.FindLatestByIdentity(ctx, rec.Respondent.Email, rec.Environment.UniqueName)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, conflictErr
		}
		if err != nil {
			return nil, err
		}
	}
	return &attemptOutcome{status: model.SubmitAlreadyExists, record: existing, conflict: true}, nil
}

// Validate normalizes identity fields in place and returns per-field errors.
func (s *SubmissionService) Validate(sub *model.Submission) map[string]string {
	sub.Respondent.Email = strings.ToLower(strings.TrimSpace(sub.Respondent.Email))
	sub.Respondent.Name = strings.TrimSpace(sub.Respondent.Name)
	sub.Environment.UniqueName = strings.TrimSpace(sub.Environment.UniqueName)

	fields := validator.Struct(sub)
	if fields == nil {
		fields = make(map[string]string)
	}

	if len(sub.QuestionDetails) > 0 {
		known := make(map[string]struct{}, len(sub.QuestionDetails))
		for _, d := range sub.QuestionDetails {
			known[d.ID] = struct{}{}
		}
		for id := range sub.Answers {
			if _, ok := known[id]; !ok {
				fields[fmt.Sprintf("answers[%s]", id)] = "answer has no matching question"
			}
		}
	}

	if len(sub.SelectedAreas) > 0 {
		areas := make(map[string]struct{}, len(sub.SelectedAreas))
		for _, a := range sub.SelectedAreas {
			areas[a] = struct{}{}
		}
		for i, d := range sub.QuestionDetails {
			if d.Area == "" {
				continue
			}
			if _, ok := areas[d.Area]; !ok {
				fields[fmt.Sprintf("question_details[%d].area", i)] = "area is not among the selected areas"
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// prepare builds the record to store: server score, metadata and identifiers.
func (s *SubmissionService) prepare(sub model.Submission) *model.Submission {
	now := s.now().UTC().Truncate(time.Millisecond)
	sub.ClientScore = nil

	result := scoring.Calculate(sub.Answers)
	if sub.Score != result.Percentage {
		client := sub.Score
		sub.ClientScore = &client
		s.log.Warn().
			Str("email", sub.Respondent.Email).
			Int("client_score", client).
			Int("server_score", result.Percentage).
			Msg("client score differs from server score")
	}
	sub.Score = result.Percentage

	if sub.Metadata.Language == "" {
		sub.Metadata.Language = "en"
	}
	sub.Metadata.SubmittedAt = now
	if started := sub.Metadata.StartedAt; started != nil && !started.After(now) {
		sub.Metadata.DurationMS = now.Sub(*started).Milliseconds()
	}

	sub.ID = ""
	sub.SubmissionID = fmt.Sprintf("%s-%s-%d", sub.Respondent.Email, sub.Environment.UniqueName, now.UnixMilli())
	sub.DetailedAnswers = detailedAnswers(sub)
	sub.CreatedAt = now
	sub.UpdatedAt = now
	return &sub
}

// detailedAnswers pairs answers with their question context, in question
// order, followed by answers without context sorted by id.
func detailedAnswers(sub model.Submission) []model.DetailedAnswer {
	out := make([]model.DetailedAnswer, 0, len(sub.Answers))
	seen := make(map[string]struct{}, len(sub.QuestionDetails))
	for _, d := range sub.QuestionDetails {
		v, ok := sub.Answers[d.ID]
		if !ok {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, model.DetailedAnswer{
			QuestionID:   d.ID,
			QuestionText: d.Text,
			AnswerValue:  v,
			AnswerLabel:  scoring.Code(v).Label(),
			Category:     d.Category,
			Area:         d.Area,
			Topic:        d.Topic,
		})
	}

	rest := make([]string, 0, len(sub.Answers)-len(seen))
	for id := range sub.Answers {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		v := sub.Answers[id]
		out = append(out, model.DetailedAnswer{QuestionID: id, AnswerValue: v, AnswerLabel: scoring.Code(v).Label()})
	}
	return out
}
