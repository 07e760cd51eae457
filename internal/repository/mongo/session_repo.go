package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutSessionCollectionName = "workout_sessions"

// mongoWorkoutSessionRepository implements repository.WorkoutSessionRepository
type mongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutSessionRepository creates a new WorkoutSession repository.
func NewMongoWorkoutSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoWorkoutSessionRepository{
		collection: db.Collection(workoutSessionCollectionName),
	}
}

// Create inserts a new session at version 1.
// The partial unique index on userId rejects a second active or paused session.
func (r *mongoWorkoutSessionRepository) Create(ctx context.Context, s *domain.WorkoutSession) (primitive.ObjectID, error) {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	s.Version = 1

	result, err := r.collection.InsertOne(ctx, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session by its ID.
func (r *mongoWorkoutSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetActiveByUser returns the user's unfinished session.
func (r *mongoWorkoutSessionRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	return r.findOne(ctx, bson.M{
		"userId": userID,
		"status": bson.M{"$in": bson.A{domain.SessionActive, domain.SessionPaused}},
	})
}

// Update replaces the document if its stored version still matches, then bumps s.Version.
func (r *mongoWorkoutSessionRepository) Update(ctx context.Context, s *domain.WorkoutSession) error {
	expected := s.Version
	next := *s
	next.Version = expected + 1
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now().UTC()
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": s.ID, "version": expected}, &next)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing document from a lost race.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": s.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	s.Version = next.Version
	s.UpdatedAt = next.UpdatedAt
	return nil
}

// Delete permanently removes a session owned by userID.
func (r *mongoWorkoutSessionRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns one page of the user's history, newest first, plus the total match count.
func (r *mongoWorkoutSessionRepository) List(ctx context.Context, userID primitive.ObjectID, f domain.SessionFilter, page domain.PageRequest) ([]domain.WorkoutSession, int64, error) {
	filter := sessionFilter(userID, f)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(sessionHistorySort).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.WorkoutSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// Stats aggregates the user's whole history.
func (r *mongoWorkoutSessionRepository) Stats(ctx context.Context, userID primitive.ObjectID) (*domain.SessionStats, error) {
	cursor, err := r.collection.Aggregate(ctx, sessionStatsPipeline(userID))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []domain.SessionStats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		// No sessions yet: $group emits nothing.
		return &domain.SessionStats{}, nil
	}
	return &results[0], nil
}

func (r *mongoWorkoutSessionRepository) findOne(ctx context.Context, filter bson.M) (*domain.WorkoutSession, error) {
	var s domain.WorkoutSession
	err := r.collection.FindOne(ctx, filter).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// EnsureWorkoutSessionIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// History listing: newest first per user
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startTime", Value: -1}},
			Options: options.Index(),
		},
		{
			// At most one unfinished session per user (needs MongoDB 6.0+ for $in in partial filters)
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetName("one_active_session_per_user").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": bson.M{"$in": bson.A{domain.SessionActive, domain.SessionPaused}}}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	})
}
