package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"opnamecore/internal/domain/models"
)

// SessionStore is the durable single-slot record of the in-progress opname
// session. The lifecycle rules (conflict on start, idempotent discard) live
// in the opname service; this layer is plain slot CRUD.
type SessionStore interface {
	Put(ctx context.Context, session models.SOSession) error
	Get(ctx context.Context) (*models.SOSession, error)
	UpdateDraft(ctx context.Context, items []models.SOWorkingItem, lastStep models.SOStep) (bool, error)
	Delete(ctx context.Context) error
}

// The slot is a single document under a fixed id, so an overwrite is a
// plain upsert and "is a session active" is a plain existence check.
const activeSessionID = "active"

type sessionDoc struct {
	ID      string           `bson:"_id"`
	Session models.SOSession `bson:"session"`
}

// MongoSessionStore implements SessionStore on a MongoDB collection.
type MongoSessionStore struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewSessionStore creates a MongoDB-backed session store.
func NewSessionStore(client *mongo.Client, dbName string) *MongoSessionStore {
	return &MongoSessionStore{
		client:   client,
		dbName:   dbName,
		collName: "so_session",
	}
}

func (s *MongoSessionStore) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(s.collName)
}

// Put overwrites the session slot, creating it when absent.
func (s *MongoSessionStore) Put(ctx context.Context, session models.SOSession) error {
	doc := sessionDoc{ID: activeSessionID, Session: session}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection().ReplaceOne(ctx, bson.M{"_id": activeSessionID}, doc, opts); err != nil {
		return fmt.Errorf("failed to persist opname session: %w", err)
	}
	return nil
}

// Get returns the active session, or nil when the slot is empty.
func (s *MongoSessionStore) Get(ctx context.Context) (*models.SOSession, error) {
	var doc sessionDoc
	err := s.collection().FindOne(ctx, bson.M{"_id": activeSessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read opname session: %w", err)
	}
	return &doc.Session, nil
}

// UpdateDraft overwrites the working items and resume step of the active
// session. The boolean reports whether a session existed to update.
func (s *MongoSessionStore) UpdateDraft(ctx context.Context, items []models.SOWorkingItem, lastStep models.SOStep) (bool, error) {
	update := bson.M{"$set": bson.M{
		"session.working_items": items,
		"session.last_step":     lastStep,
	}}
	res, err := s.collection().UpdateOne(ctx, bson.M{"_id": activeSessionID}, update)
	if err != nil {
		return false, fmt.Errorf("failed to save opname draft: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// Delete clears the session slot. Deleting an empty slot is not an error.
func (s *MongoSessionStore) Delete(ctx context.Context) error {
	if _, err := s.collection().DeleteOne(ctx, bson.M{"_id": activeSessionID}); err != nil {
		return fmt.Errorf("failed to delete opname session: %w", err)
	}
	return nil
}
