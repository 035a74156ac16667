package repository

import (
	"context"
	"errors"
	"time"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const adminsCollection = "admin_users"

type adminDocument struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	model.Admin `bson:",inline"`
}

// MongoAdminRepository handles admin data access on MongoDB.
type MongoAdminRepository struct {
	coll *mongo.Collection
}

// NewMongoAdminRepository creates a new MongoAdminRepository.
func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{coll: db.Collection(adminsCollection)}
}

// EnsureIndexes makes admin emails unique.
func (r *MongoAdminRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	})
	if err != nil {
		return classifyMongo("ensure admin indexes", err)
	}
	return nil
}

// GetByID retrieves an admin by ID.
func (r *MongoAdminRepository) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// GetByEmail retrieves an admin by their unique email.
func (r *MongoAdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoAdminRepository) findOne(ctx context.Context, filter bson.D) (*model.Admin, error) {
	var doc adminDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyMongo("get admin", err)
	}
	a := doc.Admin
	a.ID = doc.ObjectID.Hex()
	return &a, nil
}

// Create inserts a new admin.
func (r *MongoAdminRepository) Create(ctx context.Context, a *model.Admin) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, adminDocument{Admin: *a})
	if err != nil {
		return classifyMongo("create admin", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}
