package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"property-search-service/internal/adapters/listingdoc"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
)

const textIndexName = "text_search"

// Коды ошибок сервера при создании индекса с тем же именем, но другими опциями/ключами
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// ListingStore - коллекция объектов в MongoDB
type ListingStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger port.LoggerPort
}

func NewListingStore(client *mongo.Client, dbName, collectionName string, logger port.LoggerPort) (*ListingStore, error) {
	if client == nil {
		return nil, fmt.Errorf("mongo client cannot be nil")
	}
	return &ListingStore{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
		logger: logger.WithFields(port.Fields{"component": "MongoListingStore", "collection": collectionName}),
	}, nil
}

// FindByID ищет сначала по _id (строка, затем ObjectID), потом по полю id.
func (s *ListingStore) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	filters := []bson.M{{"_id": id}}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filters = append(filters, bson.M{"_id": oid})
	}
	filters = append(filters, bson.M{"id": id})

	for _, f := range filters {
		var doc listingdoc.Document
		err := s.coll.FindOne(ctx, f).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("mongo find by id: %w", err)
		}
		l := doc.ToDomain()
		return &l, nil
	}
	return nil, domain.ErrListingNotFound
}

func (s *ListingStore) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Candidate, error) {
	filter := buildFilter(q)
	opts := options.Find().SetLimit(int64(q.Limit))

	if q.Mode == domain.FetchText {
		textScore := bson.M{"$meta": "textScore"}
		opts.SetProjection(bson.M{"score": textScore})
		opts.SetSort(bson.D{{Key: "score", Value: textScore}, {Key: "updated_at", Value: -1}})
	} else {
		opts.SetSort(bson.D{{Key: "updated_at", Value: -1}})
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find candidates (%s): %w", q.Mode, err)
	}
	defer cursor.Close(ctx)

	return s.decodeCandidates(ctx, cursor, q.Mode)
}

// decodeCandidates разбирает курсор по одному документу: документ, который не
// ложится в listingdoc.Document, пропускается с предупреждением.
func (s *ListingStore) decodeCandidates(ctx context.Context, cursor *mongo.Cursor, mode domain.FetchMode) ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	for cursor.Next(ctx) {
		var doc listingdoc.Document
		if err := cursor.Decode(&doc); err != nil {
			s.logger.Warn("Skipping undecodable listing document", port.Fields{
				"error": err.Error(),
				"_id":   fmt.Sprint(cursor.Current.Lookup("_id")),
			})
			continue
		}
		c := domain.Candidate{Listing: doc.ToDomain()}
		if mode == domain.FetchText {
			c.TextScore = doc.TextScore
		}
		candidates = append(candidates, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo iterate candidates: %w", err)
	}
	return candidates, nil
}

// EnsureIndexes создает структурные индексы и текстовый индекс text_search.
// Если текстовый индекс уже есть с другими ключами или опциями, он пересоздается.
func (s *ListingStore) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "purpose", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "subcategory_canonical", Value: 1}}},
		{Keys: bson.D{{Key: "price_sort_gbp", Value: 1}}},
		{Keys: bson.D{{Key: "price_sale_gbp", Value: 1}}},
		{Keys: bson.D{{Key: "price_rent_pcm_gbp", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create structured indexes: %w", err)
	}

	textModel := textIndexModel()
	_, err := s.coll.Indexes().CreateOne(ctx, textModel)
	if err == nil {
		return nil
	}
	if !isIndexConflict(err) {
		return fmt.Errorf("create text index: %w", err)
	}

	s.logger.Warn("Text index definition changed, recreating", port.Fields{"index": textIndexName})
	if _, err := s.coll.Indexes().DropOne(ctx, textIndexName); err != nil {
		return fmt.Errorf("drop text index: %w", err)
	}
	if _, err := s.coll.Indexes().CreateOne(ctx, textModel); err != nil {
		return fmt.Errorf("recreate text index: %w", err)
	}
	return nil
}

func textIndexModel() mongo.IndexModel {
	keys := make(bson.D, 0, len(textIndexFields))
	for _, f := range textIndexFields {
		keys = append(keys, bson.E{Key: f, Value: "text"})
	}
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(textIndexName).SetDefaultLanguage("english"),
	}
}

func isIndexConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(codeIndexOptionsConflict) || se.HasErrorCode(codeIndexKeySpecsConflict)
}

func (s *ListingStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
