package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

type insertOneAPI interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoRecorder stores evaluation records in the agent history collection.
type MongoRecorder struct {
	coll   insertOneAPI
	client *mongo.Client
}

// ConnectMongo dials uri and returns a recorder for database.collection.
// The caller must eventually call Close.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*MongoRecorder, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri required")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)
	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoRecorder{
		coll:   client.Database(database).Collection(collection),
		client: client,
	}, nil
}

func NewMongoRecorder(coll insertOneAPI) *MongoRecorder {
	return &MongoRecorder{coll: coll}
}

func (r *MongoRecorder) Record(ctx context.Context, rec models.EvaluationRecord) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert evaluation record: %w", err)
	}
	return nil
}

func (r *MongoRecorder) Close(ctx context.Context) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}
