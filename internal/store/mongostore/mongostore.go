// mongostore.go
//
// MongoDB document store
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of backoffice-propsdb.
// backoffice-propsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// backoffice-propsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with backoffice-propsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/backoffice-propsdb/internal/logger"
	"github.com/localnerve/backoffice-propsdb/internal/store"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the collection holding every resource document
const CollectionName = "resource_documents"

type mongoDocument struct {
	ID         string    `bson:"_id"`
	Resource   string    `bson:"resource"`
	PropertyID string    `bson:"property_id"`
	Version    int64     `bson:"version"`
	Body       bson.M    `bson:"body"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

var _ store.DocumentStore = (*Store)(nil)

// Store keeps resource documents in MongoDB
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials MongoDB, verifies the connection and ensures the indexes exist
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := New(client, client.Database(dbName))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Log.Info("connected to MongoDB", zap.String("database", dbName))
	return s, nil
}

// New wraps an existing client and database
func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:     client,
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the lookup indexes used by List and FindByProperty
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "resource", Value: 1},
				{Key: "property_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_resource_property_created"),
		},
	}

	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create document indexes: %w", err)
	}
	return nil
}

// List returns the documents of a resource, oldest first
func (s *Store) List(ctx context.Context, resource, propertyID string) ([]store.Document, error) {
	filter := bson.M{"resource": resource}
	if propertyID != "" {
		filter["property_id"] = propertyID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []mongoDocument
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, *toDocument(&rows[i]))
	}
	return docs, nil
}

// Get returns one document by id
func (s *Store) Get(ctx context.Context, resource, id string) (*store.Document, error) {
	return s.findOne(ctx, bson.M{"_id": id, "resource": resource}, nil)
}

// FindByProperty returns the first document created for the property
func (s *Store) FindByProperty(ctx context.Context, resource, propertyID string) (*store.Document, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.findOne(ctx, bson.M{"resource": resource, "property_id": propertyID}, opts)
}

func (s *Store) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*store.Document, error) {
	var row mongoDocument
	var err error
	if opts != nil {
		err = s.collection.FindOne(ctx, filter, opts).Decode(&row)
	} else {
		err = s.collection.FindOne(ctx, filter).Decode(&row)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return toDocument(&row), nil
}

// Create inserts a new document at version 1, assigning an id if it has none
func (s *Store) Create(ctx context.Context, doc *store.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	row := mongoDocument{
		ID:         doc.ID,
		Resource:   doc.Resource,
		PropertyID: doc.PropertyID,
		Version:    1,
		Body:       bson.M(doc.Body),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if row.Body == nil {
		row.Body = bson.M{}
	}
	if _, err := s.collection.InsertOne(ctx, row); err != nil {
		return err
	}

	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

// Update applies fn and swaps the document in only if its version did not move
func (s *Store) Update(ctx context.Context, resource, id string, expected types.Version, fn store.Mutation) (*store.Document, error) {
	doc, err := s.Get(ctx, resource, id)
	if err != nil {
		return nil, err
	}
	if err := store.CheckVersion(doc.Version, expected); err != nil {
		return nil, err
	}

	loaded := doc.Version
	if err := fn(doc); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": id, "resource": resource, "version": int64(loaded)}
	update := bson.M{
		"$set": bson.M{
			"property_id": doc.PropertyID,
			"body":        bson.M(doc.Body),
			"version":     int64(loaded + 1),
			"updated_at":  now,
		},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		logger.Log.Debug("concurrent document update", zap.String("resource", resource), zap.String("id", id))
		return nil, store.ErrVersion
	}

	doc.Version = loaded + 1
	doc.UpdatedAt = now
	return doc, nil
}

// Delete removes a document, honoring expected when it is set
func (s *Store) Delete(ctx context.Context, resource, id string, expected types.Version) error {
	doc, err := s.Get(ctx, resource, id)
	if err != nil {
		return err
	}
	if err := store.CheckVersion(doc.Version, expected); err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "resource": resource, "version": int64(doc.Version)})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrVersion
	}
	return nil
}

// Ping checks the server connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDocument(row *mongoDocument) *store.Document {
	body, _ := normalize(row.Body).(map[string]interface{})
	if body == nil {
		body = map[string]interface{}{}
	}
	return &store.Document{
		ID:         row.ID,
		Resource:   row.Resource,
		PropertyID: row.PropertyID,
		Version:    uint64(row.Version),
		Body:       body,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// normalize turns decoded BSON containers into the plain maps and slices
// the nested item functions expect. Integers become float64 like decoded JSON.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		return normalizeMap(val)
	case map[string]interface{}:
		return normalizeMap(val)
	case bson.D:
		out := make(map[string]interface{}, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		return normalizeSlice(val)
	case []interface{}:
		return normalizeSlice(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	default:
		return val
	}
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalizeSlice(a []interface{}) []interface{} {
	out := make([]interface{}, len(a))
	for i, v := range a {
		out[i] = normalize(v)
	}
	return out
}
