package record

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/blobkeeper/internal/common"
	"github.com/dmitrijs2005/blobkeeper/internal/config"
)

type collectionAPI interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// CollectionStore implements Store over MongoDB collections. Write appends
// the record as a new document in the collection named by dbPath and
// returns its generated ObjectID; Remove takes "collection/id". CreatedAt
// derives from the ObjectID's embedded timestamp, so it carries the record
// store's own clock at second resolution.
type CollectionStore struct {
	collections func(name string) collectionAPI
}

// NewCollectionStore connects to MongoDB and builds a CollectionStore.
func NewCollectionStore(ctx context.Context, cfg *config.Config) (*CollectionStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	return &CollectionStore{
		collections: func(name string) collectionAPI { return db.Collection(name) },
	}, nil
}

func (s *CollectionStore) Write(ctx context.Context, dbPath string, rec Record) (*WriteResult, error) {
	name := normalizePath(dbPath)

	res, err := s.collections(name).InsertOne(ctx, bson.M(rec))
	if err != nil {
		return nil, fmt.Errorf("%w: insert into %s: %v", common.ErrRecordStoreUnavailable, name, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected id type %T", common.ErrRecordStoreUnavailable, res.InsertedID)
	}

	return &WriteResult{
		Key:       oid.Hex(),
		Ref:       name + "/" + oid.Hex(),
		CreatedAt: oid.Timestamp(),
	}, nil
}

func (s *CollectionStore) Remove(ctx context.Context, dbPath string) error {
	name, id := splitPath(dbPath)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not a valid document id, so nothing can exist at this path.
		return fmt.Errorf("%w: %s", common.ErrRecordNotFound, dbPath)
	}

	res, err := s.collections(name).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrRecordStoreUnavailable, dbPath, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", common.ErrRecordNotFound, dbPath)
	}

	return nil
}
