package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/cyberassess-backend/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the repositories use, so tests can
// substitute pgxmock.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const submissionColumns = `id::text, submission_id, respondent, environment, answers,
	selected_categories, selected_areas, detailed_answers, score, client_score,
	total_questions, completed_questions, metadata, created_at, updated_at`

// PostgresSubmissionRepository stores submissions in the assessments table,
// with nested parts as JSONB.
type PostgresSubmissionRepository struct {
	pool      pgxPool
	opTimeout time.Duration
}

// NewPostgresSubmissionRepository creates a new PostgresSubmissionRepository.
func NewPostgresSubmissionRepository(pool pgxPool, opTimeout time.Duration) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{pool: pool, opTimeout: opTimeout}
}

func (r *PostgresSubmissionRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opTimeout)
}

// FindByFingerprint returns the submission matching the full duplicate tuple.
func (r *PostgresSubmissionRepository) FindByFingerprint(ctx context.Context, fp model.Fingerprint) (*model.Submission, error) {
	return r.getOne(ctx, "find by fingerprint",
		`SELECT `+submissionColumns+` FROM assessments
		 WHERE respondent_email = $1 AND environment_name = $2 AND score = $3
		   AND total_questions = $4 AND completed_questions = $5`,
		fp.Email, fp.EnvironmentName, fp.Score, fp.TotalQuestions, fp.CompletedQuestions)
}

// FindLatestByIdentity returns the newest submission for an email and environment.
func (r *PostgresSubmissionRepository) FindLatestByIdentity(ctx context.Context, email, environmentName string) (*model.Submission, error) {
	return r.getOne(ctx, "find latest by identity",
		`SELECT `+submissionColumns+` FROM assessments
		 WHERE respondent_email = $1 AND environment_name = $2
		 ORDER BY created_at DESC LIMIT 1`,
		email, environmentName)
}

// GetByID retrieves a submission by its UUID.
func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	return r.getOne(ctx, "get submission",
		`SELECT `+submissionColumns+` FROM assessments WHERE id = $1`, id)
}

func (r *PostgresSubmissionRepository) getOne(ctx context.Context, op, sql string, args ...any) (*model.Submission, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	s, err := scanSubmission(r.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyPostgres(op, err)
	}
	return s, nil
}

// Insert stores a new submission and sets its ID.
func (r *PostgresSubmissionRepository) Insert(ctx context.Context, s *model.Submission) error {
	respondent, err := json.Marshal(s.Respondent)
	if err != nil {
		return storeErr("encode respondent", KindFatal, err)
	}
	environment, err := json.Marshal(s.Environment)
	if err != nil {
		return storeErr("encode environment", KindFatal, err)
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return storeErr("encode answers", KindFatal, err)
	}
	categories, err := json.Marshal(nonNil(s.SelectedCategories))
	if err != nil {
		return storeErr("encode categories", KindFatal, err)
	}
	areas, err := json.Marshal(nonNil(s.SelectedAreas))
	if err != nil {
		return storeErr("encode areas", KindFatal, err)
	}
	detailed, err := json.Marshal(s.DetailedAnswers)
	if err != nil {
		return storeErr("encode detailed answers", KindFatal, err)
	}
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return storeErr("encode metadata", KindFatal, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	id := uuid.NewString()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO assessments (
			id, submission_id, respondent_email, environment_name, score, client_score,
			total_questions, completed_questions, respondent, environment, answers,
			selected_categories, selected_areas, detailed_answers, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		id, s.SubmissionID, s.Respondent.Email, s.Environment.UniqueName, s.Score, s.ClientScore,
		s.TotalQuestions, s.CompletedQuestions, respondent, environment, answers,
		categories, areas, detailed, metadata, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return classifyPostgres("insert submission", err)
	}
	s.ID = id
	return nil
}

// List returns one page of submissions, newest first.
func (r *PostgresSubmissionRepository) List(ctx context.Context, q model.ListAssessmentsQuery) ([]model.Submission, error) {
	where, args := postgresListFilter(q)
	args = append(args, q.Limit, q.Skip)
	sql := fmt.Sprintf(`SELECT %s FROM assessments %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		submissionColumns, where, len(args)-1, len(args))

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classifyPostgres("list submissions", err)
	}
	defer rows.Close()

	items := make([]model.Submission, 0, q.Limit)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, classifyPostgres("scan submission", err)
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPostgres("iterate submissions", err)
	}
	return items, nil
}

// Count returns the number of submissions matching the filter.
func (r *PostgresSubmissionRepository) Count(ctx context.Context, q model.ListAssessmentsQuery) (int64, error) {
	where, args := postgresListFilter(q)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessments `+where, args...).Scan(&n); err != nil {
		return 0, classifyPostgres("count submissions", err)
	}
	return n, nil
}

// Statistics aggregates score statistics over the filter.
func (r *PostgresSubmissionRepository) Statistics(ctx context.Context, q model.ListAssessmentsQuery) (model.AssessmentStatistics, error) {
	where, args := postgresListFilter(q)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var st model.AssessmentStatistics
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score), 0)::float8, COALESCE(MIN(score), 0), COALESCE(MAX(score), 0)
		 FROM assessments `+where, args...,
	).Scan(&st.TotalAssessments, &st.AverageScore, &st.MinScore, &st.MaxScore)
	if err != nil {
		return model.AssessmentStatistics{}, classifyPostgres("aggregate statistics", err)
	}
	return st, nil
}

// Delete removes a submission permanently. It reports false when nothing matched.
func (r *PostgresSubmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return false, classifyPostgres("delete submission", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var (
		s                                                               model.Submission
		respondent, environment, answers, categories, areas, detailed []byte
		metadata                                                        []byte
	)
	err := row.Scan(&s.ID, &s.SubmissionID, &respondent, &environment, &answers,
		&categories, &areas, &detailed, &s.Score, &s.ClientScore,
		&s.TotalQuestions, &s.CompletedQuestions, &metadata, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, part := range []struct {
		raw []byte
		dst any
	}{
		{respondent, &s.Respondent},
		{environment, &s.Environment},
		{answers, &s.Answers},
		{categories, &s.SelectedCategories},
		{areas, &s.SelectedAreas},
		{detailed, &s.DetailedAnswers},
		{metadata, &s.Metadata},
	} {
		if len(part.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(part.raw, part.dst); err != nil {
			return nil, fmt.Errorf("decode submission column: %w", err)
		}
	}
	return &s, nil
}

// postgresListFilter builds the WHERE clause and its positional args.
func postgresListFilter(q model.ListAssessmentsQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Email != "" {
		args = append(args, "%"+escapeLike(q.Email)+"%")
		conds = append(conds, fmt.Sprintf("respondent_email ILIKE $%d", len(args)))
	}
	if q.EnvironmentName != "" {
		args = append(args, "%"+escapeLike(q.EnvironmentName)+"%")
		conds = append(conds, fmt.Sprintf("environment_name ILIKE $%d", len(args)))
	}
	if q.DateFrom != nil {
		args = append(args, *q.DateFrom)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if q.DateTo != nil {
		args = append(args, *q.DateTo)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// classifyPostgres maps pgx errors onto StoreError kinds.
func classifyPostgres(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return storeErr(op, KindConflict, err)
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			pgErr.Code == "40001", // serialization_failure
			pgErr.Code == "40P01", // deadlock_detected
			pgErr.Code == "53300", // too_many_connections
			pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			return storeErr(op, KindTransient, err)
		}
		return storeErr(op, KindFatal, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) || isTransientNetwork(err) {
		return storeErr(op, KindTransient, err)
	}
	return storeErr(op, KindFatal, err)
}
