package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	saveTimeout = time.Second
	readTimeout = 2 * time.Second
)

// MongoLevelRepo handles the persistence of generated levels in MongoDB.
type MongoLevelRepo struct {
	collection *mongo.Collection
}

var _ i.LevelRepo = &MongoLevelRepo{}

// NewMongoLevelRepo creates a new MongoLevelRepo with the given MongoDB client, database name, and collection name.
func NewMongoLevelRepo(client *mongo.Client, dbName, collectionName string) *MongoLevelRepo {
	return &MongoLevelRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save inserts the level or replaces the stored level with the same ID.
func (r *MongoLevelRepo) Save(ctx context.Context, level *dmn.Level) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	filter := bson.M{"_id": level.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, level, opts); err != nil {
		return fmt.Errorf("saving level %s: %w", level.ID, err)
	}
	return nil
}

// ByID retrieves a level by its ID.
// Returns dmn.ErrLevelNotFound if no level has that ID.
func (r *MongoLevelRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Level, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var level dmn.Level
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&level); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", dmn.ErrLevelNotFound, id)
		}
		return nil, fmt.Errorf("loading level %s: %w", id, err)
	}
	return &level, nil
}
