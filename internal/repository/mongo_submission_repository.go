package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

const submissionsCollection = "assessments"

// submissionDocument is the stored shape: the model plus the ObjectID key.
type submissionDocument struct {
	ObjectID         primitive.ObjectID `bson:"_id,omitempty"`
	model.Submission `bson:",inline"`
}

func (d *submissionDocument) toModel() model.Submission {
	s := d.Submission
	s.ID = d.ObjectID.Hex()
	return s
}

// MongoSubmissionRepository stores submissions in a MongoDB collection.
type MongoSubmissionRepository struct {
	coll      *mongo.Collection
	opTimeout time.Duration
}

// NewMongoSubmissionRepository creates a new MongoSubmissionRepository.
func NewMongoSubmissionRepository(db *mongo.Database, opTimeout time.Duration) *MongoSubmissionRepository {
	return &MongoSubmissionRepository{coll: db.Collection(submissionsCollection), opTimeout: opTimeout}
}

// EnsureIndexes creates the unique fingerprint index and the list indexes.
// It is idempotent.
func (r *MongoSubmissionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "respondent.email", Value: 1},
				{Key: "environment.unique_name", Value: 1},
				{Key: "score", Value: 1},
				{Key: "total_questions", Value: 1},
				{Key: "completed_questions", Value: 1},
			},
			Options: options.Index().SetName("uniq_fingerprint").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "respondent.email", Value: 1}, {Key: "environment.unique_name", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("identity_recent"),
		},
	})
	if err != nil {
		return classifyMongo("ensure submission indexes", err)
	}
	return nil
}

func (r *MongoSubmissionRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opTimeout)
}

// FindByFingerprint returns the submission matching the full duplicate tuple.
func (r *MongoSubmissionRepository) FindByFingerprint(ctx context.Context, fp model.Fingerprint) (*model.Submission, error) {
	filter := bson.D{
		{Key: "respondent.email", Value: fp.Email},
		{Key: "environment.unique_name", Value: fp.EnvironmentName},
		{Key: "score", Value: fp.Score},
		{Key: "total_questions", Value: fp.TotalQuestions},
		{Key: "completed_questions", Value: fp.CompletedQuestions},
	}
	return r.findOne(ctx, "find by fingerprint", filter, nil)
}

// FindLatestByIdentity returns the newest submission for an email and environment.
func (r *MongoSubmissionRepository) FindLatestByIdentity(ctx context.Context, email, environmentName string) (*model.Submission, error) {
	filter := bson.D{
		{Key: "respondent.email", Value: email},
		{Key: "environment.unique_name", Value: environmentName},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findOne(ctx, "find latest by identity", filter, opts)
}

// GetByID retrieves a submission by its hex ObjectID.
func (r *MongoSubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return r.findOne(ctx, "get submission", bson.D{{Key: "_id", Value: oid}}, nil)
}

func (r *MongoSubmissionRepository) findOne(ctx context.Context, op string, filter bson.D, opts *options.FindOneOptions) (*model.Submission, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc submissionDocument
	var err error
	if opts != nil {
		err = r.coll.FindOne(ctx, filter, opts).Decode(&doc)
	} else {
		err = r.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyMongo(op, err)
	}
	s := doc.toModel()
	return &s, nil
}

// Insert stores a new submission and sets its ID.
func (r *MongoSubmissionRepository) Insert(ctx context.Context, s *model.Submission) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := submissionDocument{Submission: *s}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return classifyMongo("insert submission", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return storeErr("insert submission", KindFatal, fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	s.ID = oid.Hex()
	return nil
}

// List returns one page of submissions, newest first.
func (r *MongoSubmissionRepository) List(ctx context.Context, q model.ListAssessmentsQuery) ([]model.Submission, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, mongoListFilter(q), opts)
	if err != nil {
		return nil, classifyMongo("list submissions", err)
	}
	defer cur.Close(ctx)

	items := make([]model.Submission, 0, q.Limit)
	for cur.Next(ctx) {
		var doc submissionDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, storeErr("decode submission", KindFatal, err)
		}
		items = append(items, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, classifyMongo("iterate submissions", err)
	}
	return items, nil
}

// Count returns the number of submissions matching the filter.
func (r *MongoSubmissionRepository) Count(ctx context.Context, q model.ListAssessmentsQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, mongoListFilter(q))
	if err != nil {
		return 0, classifyMongo("count submissions", err)
	}
	return n, nil
}

// Statistics aggregates score statistics over the filter.
func (r *MongoSubmissionRepository) Statistics(ctx context.Context, q model.ListAssessmentsQuery) (model.AssessmentStatistics, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: mongoListFilter(q)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$score"}}},
			{Key: "min", Value: bson.D{{Key: "$min", Value: "$score"}}},
			{Key: "max", Value: bson.D{{Key: "$max", Value: "$score"}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return model.AssessmentStatistics{}, classifyMongo("aggregate statistics", err)
	}
	defer cur.Close(ctx)

	var row struct {
		Total int64   `bson:"total"`
		Avg   float64 `bson:"avg"`
		Min   int     `bson:"min"`
		Max   int     `bson:"max"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return model.AssessmentStatistics{}, storeErr("decode statistics", KindFatal, err)
		}
	}
	if err := cur.Err(); err != nil {
		return model.AssessmentStatistics{}, classifyMongo("aggregate statistics", err)
	}

	return model.AssessmentStatistics{
		TotalAssessments: row.Total,
		AverageScore:     row.Avg,
		MinScore:         row.Min,
		MaxScore:         row.Max,
	}, nil
}

// Delete removes a submission permanently. It reports false when nothing matched.
func (r *MongoSubmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, classifyMongo("delete submission", err)
	}
	return res.DeletedCount > 0, nil
}

// mongoListFilter builds the admin list filter. Text filters are
// case-insensitive substring matches.
func mongoListFilter(q model.ListAssessmentsQuery) bson.D {
	filter := bson.D{}
	if q.Email != "" {
		filter = append(filter, bson.E{Key: "respondent.email", Value: primitive.Regex{Pattern: regexp.QuoteMeta(q.Email), Options: "i"}})
	}
	if q.EnvironmentName != "" {
		filter = append(filter, bson.E{Key: "environment.unique_name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(q.EnvironmentName), Options: "i"}})
	}
	if q.DateFrom != nil || q.DateTo != nil {
		rng := bson.D{}
		if q.DateFrom != nil {
			rng = append(rng, bson.E{Key: "$gte", Value: *q.DateFrom})
		}
		if q.DateTo != nil {
			rng = append(rng, bson.E{Key: "$lte", Value: *q.DateTo})
		}
		filter = append(filter, bson.E{Key: "created_at", Value: rng})
	}
	return filter
}

// classifyMongo maps driver errors onto StoreError kinds.
func classifyMongo(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return storeErr(op, KindConflict, err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) || isTransientNetwork(err) {
		return storeErr(op, KindTransient, err)
	}
	var sse topology.ServerSelectionError
	if errors.As(err, &sse) {
		return storeErr(op, KindTransient, err)
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && (labeled.HasErrorLabel("RetryableWriteError") || labeled.HasErrorLabel("TransientTransactionError")) {
		return storeErr(op, KindTransient, err)
	}
	return storeErr(op, KindFatal, err)
}
