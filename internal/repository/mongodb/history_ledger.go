package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"opnamecore/internal/domain/models"
)

// HistoryLedger is the append-only store of finalized opname sessions.
// Records are immutable once written; the only removal path is a bulk
// purge by id.
type HistoryLedger interface {
	Append(ctx context.Context, record models.SOHistoryRecord) (models.SOHistoryRecord, error)
	ListAll(ctx context.Context) ([]models.SOHistoryRecord, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// MongoHistoryLedger implements HistoryLedger on a MongoDB collection.
type MongoHistoryLedger struct {
	client   *mongo.Client
	dbName   string
	collName string
	logger   *zap.Logger
}

// NewHistoryLedger creates a MongoDB-backed history ledger.
func NewHistoryLedger(client *mongo.Client, dbName string, logger *zap.Logger) *MongoHistoryLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoHistoryLedger{
		client:   client,
		dbName:   dbName,
		collName: "so_history",
		logger:   logger,
	}
}

func (l *MongoHistoryLedger) collection() *mongo.Collection {
	return l.client.Database(l.dbName).Collection(l.collName)
}

// Append assigns an id and persists the record. The stored document is never
// mutated afterwards.
func (l *MongoHistoryLedger) Append(ctx context.Context, record models.SOHistoryRecord) (models.SOHistoryRecord, error) {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	if _, err := l.collection().InsertOne(ctx, record); err != nil {
		return models.SOHistoryRecord{}, fmt.Errorf("failed to append opname history record: %w", err)
	}
	return record, nil
}

// ListAll returns every history record ordered by date descending. A
// document that fails to decode is skipped and logged so one corrupt entry
// cannot take down analysis over the rest.
func (l *MongoHistoryLedger) ListAll(ctx context.Context) ([]models.SOHistoryRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := l.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list opname history: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	records := make([]models.SOHistoryRecord, 0)
	for cursor.Next(ctx) {
		var record models.SOHistoryRecord
		if err := cursor.Decode(&record); err != nil {
			l.logger.Warn("skipping corrupt opname history record", zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed reading opname history cursor: %w", err)
	}

	return records, nil
}

// DeleteByIDs permanently removes the given records. Unknown ids are
// ignored.
func (l *MongoHistoryLedger) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := l.collection().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete opname history records: %w", err)
	}
	return nil
}
