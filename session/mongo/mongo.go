// Package mongo provides a core.SessionStore backed by MongoDB. Each
// session is one document; turns are appended with $push/$each.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hupe1980/agentkit/core"
)

// Options configures the store.
type Options struct {
	Database   string
	Collection string
}

// Store implements core.SessionStore on a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ core.SessionStore = (*Store)(nil)

type sessionDocument struct {
	ID         string      `bson:"_id"`
	EndpointID string      `bson:"endpoint_id"`
	Turns      []core.Turn `bson:"turns"`
	CreatedAt  time.Time   `bson:"created_at"`
	UpdatedAt  time.Time   `bson:"updated_at"`
}

func (d sessionDocument) toSession() *core.Session {
	turns := d.Turns
	if turns == nil {
		turns = []core.Turn{}
	}

	return &core.Session{
		ID:         d.ID,
		EndpointID: d.EndpointID,
		Turns:      turns,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// New connects to uri. Nested documents inside turn arguments decode as
// maps rather than ordered documents.
func New(ctx context.Context, uri string, optFns ...func(o *Options)) (*Store, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return NewFromClient(client, optFns...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *mongo.Client, optFns ...func(o *Options)) *Store {
	opts := Options{Database: "agentkit", Collection: "sessions"}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}

	return s.client.Disconnect(ctx)
}

// Create implements core.SessionStore.
func (s *Store) Create(ctx context.Context, endpointID string) (string, error) {
	now := time.Now().UTC()

	doc := sessionDocument{
		ID:         core.NewID(),
		EndpointID: endpointID,
		Turns:      []core.Turn{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return doc.ID, nil
}

// Get implements core.SessionStore.
func (s *Store) Get(ctx context.Context, id string) (*core.Session, error) {
	var doc sessionDocument

	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return doc.toSession(), nil
}

// Append implements core.SessionStore. A single update document makes the
// multi-turn append atomic.
func (s *Store) Append(ctx context.Context, id string, turns ...core.Turn) error {
	update := bson.M{
		"$push": bson.M{"turns": bson.M{"$each": turns}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("append turns: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	return nil
}

// Delete implements core.SessionStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	return nil
}
