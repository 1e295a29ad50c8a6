package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Arkiv-Network/inf-demo/internal/db/model"
)

func (db *Database) CreateEntities(ctx context.Context, entities []EntityCreate) ([]string, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	now := db.now().UTC()
	keys := make([]string, len(entities))
	docs := make([]any, len(entities))
	for i, e := range entities {
		numeric, err := toInt64Attributes(e.NumericAttributes)
		if err != nil {
			return nil, err
		}
		keys[i] = NewEntityKey()
		docs[i] = &model.EntityDocument{
			Key:               keys[i],
			Owner:             db.owner,
			ContentType:       e.ContentType,
			Payload:           e.Payload,
			StringAttributes:  e.StringAttributes,
			NumericAttributes: numeric,
			CreatedAt:         now,
			ExpiresAt:         now.Add(e.ExpiresIn),
		}
	}

	_, err := db.collection(model.EntitiesCollection).InsertMany(ctx, docs)
	if err != nil {
		var writeErr mongo.BulkWriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return nil, &DuplicateKeyError{
						Key:     keys[e.Index],
						Message: "entity already exists",
					}
				}
			}
		}
		return nil, err
	}

	return keys, nil
}

func (db *Database) GetEntity(ctx context.Context, key string) (*Entity, error) {
	filter := bson.M{
		"_id":        strings.ToLower(key),
		"expires_at": bson.M{"$gt": db.now().UTC()},
	}

	var doc model.EntityDocument
	err := db.collection(model.EntitiesCollection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     key,
				Message: "entity not found",
			}
		}
		return nil, err
	}

	return fromDocument(&doc), nil
}

func (db *Database) QueryEntities(ctx context.Context, q Query) (*EntityPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	offset, err := DecodePageToken(q.PageToken)
	if err != nil {
		return nil, err
	}

	size := PageWindow(offset, db.pageLimit, q.Limit)
	if size == 0 {
		return &EntityPage{}, nil
	}

	filter, err := db.buildFilter(q)
	if err != nil {
		return nil, err
	}

	// one extra document tells whether a next page exists
	opts := options.Find().
		SetSort(buildSort(q.OrderBy)).
		SetSkip(offset).
		SetLimit(size + 1)

	cursor, err := db.collection(model.EntitiesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.EntityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	page := &EntityPage{}
	if int64(len(docs)) > size {
		docs = docs[:size]
		next := offset + size
		if q.Limit == 0 || next < q.Limit {
			page.NextPageToken = EncodePageToken(next)
		}
	}

	page.Entities = make([]*Entity, 0, len(docs))
	for i := range docs {
		page.Entities = append(page.Entities, fromDocument(&docs[i]))
	}

	return page, nil
}

func (db *Database) DeleteEntities(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	lowered := make([]string, len(keys))
	for i, k := range keys {
		lowered[i] = strings.ToLower(k)
	}

	_, err := db.collection(model.EntitiesCollection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": lowered}})
	return err
}

func (db *Database) buildFilter(q Query) (bson.M, error) {
	filter := bson.M{
		"expires_at": bson.M{"$gt": db.now().UTC()},
	}
	if q.OwnedBy != "" {
		filter["owner"] = q.OwnedBy
	}

	for _, p := range q.Predicates {
		field, value, err := predicateField(p)
		if err != nil {
			return nil, err
		}

		cond, ok := filter[field].(bson.M)
		if !ok {
			cond = bson.M{}
			filter[field] = cond
		}
		cond["$"+string(p.Op)] = value
	}

	return filter, nil
}

func predicateField(p Predicate) (string, any, error) {
	if p.Type == AttributeString {
		return "string_attributes." + p.Key, p.StringValue, nil
	}
	if p.NumericValue > math.MaxInt64 {
		return "", nil, &InvalidQueryError{Message: fmt.Sprintf("numeric value of %s overflows int64", p.Key)}
	}
	return "numeric_attributes." + p.Key, int64(p.NumericValue), nil
}

func buildSort(o *OrderBy) bson.D {
	sort := bson.D{}
	if o != nil {
		prefix := "string_attributes."
		if o.Type == AttributeNumeric {
			prefix = "numeric_attributes."
		}
		direction := 1
		if o.Desc {
			direction = -1
		}
		sort = append(sort, bson.E{Key: prefix + o.Key, Value: direction})
	}
	return append(sort, bson.E{Key: "created_at", Value: 1}, bson.E{Key: "_id", Value: 1})
}

func toInt64Attributes(attrs map[string]uint64) (map[string]int64, error) {
	result := make(map[string]int64, len(attrs))
	for k, v := range attrs {
		if v > math.MaxInt64 {
			return nil, &InvalidQueryError{Message: fmt.Sprintf("numeric attribute %s overflows int64", k)}
		}
		result[k] = int64(v)
	}
	return result, nil
}

func fromDocument(doc *model.EntityDocument) *Entity {
	numeric := make(map[string]uint64, len(doc.NumericAttributes))
	for k, v := range doc.NumericAttributes {
		numeric[k] = uint64(v)
	}

	return &Entity{
		Key:               doc.Key,
		Owner:             doc.Owner,
		ContentType:       doc.ContentType,
		Payload:           doc.Payload,
		StringAttributes:  doc.StringAttributes,
		NumericAttributes: numeric,
		CreatedAt:         doc.CreatedAt,
		ExpiresAt:         doc.ExpiresAt,
	}
}
