package blogposts

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tdc-backend/internal/content"
)

// Repository stores blog posts. The section methods address one section by
// identity and return the post's new version.
type Repository interface {
	Create(ctx context.Context, post content.BlogPost) error
	Get(ctx context.Context, id string) (content.BlogPost, error)
	Replace(ctx context.Context, post content.BlogPost, expectedVersion int64) error
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]content.BlogPost, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	UpdateSection(ctx context.Context, postID string, section content.Section, at time.Time) (int64, error)
	AddSection(ctx context.Context, postID string, section content.Section, at time.Time) (int64, error)
	DeleteSection(ctx context.Context, postID, sectionID string, at time.Time) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, post content.BlogPost) error {
	_, err := r.col.InsertOne(ctx, post)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (content.BlogPost, error) {
	var post content.BlogPost
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return content.BlogPost{}, ErrNotFound
		}
		return content.BlogPost{}, err
	}
	return post, nil
}

func (r *MongoRepository) Replace(ctx context.Context, post content.BlogPost, expectedVersion int64) error {
	id := post.ID.String()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": id, "version": expectedVersion}, post)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.missing(ctx, id, ErrVersionConflict)
}

// missing tells a vanished post apart from a failed match on something else.
func (r *MongoRepository) missing(ctx context.Context, id string, otherwise error) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return otherwise
}

func listQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	if filter.Topic != "" {
		query["topics"] = filter.Topic
	}
	return query
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]content.BlogPost, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]content.BlogPost, 0)
	for cursor.Next(ctx) {
		var item content.BlogPost
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, listQuery(filter))
}

func (r *MongoRepository) updateVersion(ctx context.Context, postID string, filter, update bson.M, notMatched error) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"version": 1})

	var updated struct {
		Version int64 `bson:"version"`
	}
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, r.missing(ctx, postID, notMatched)
		}
		return 0, err
	}
	return updated.Version, nil
}

func (r *MongoRepository) UpdateSection(ctx context.Context, postID string, section content.Section, at time.Time) (int64, error) {
	filter := bson.M{
		"_id":      postID,
		"sections": bson.M{"$elemMatch": bson.M{"id": section.ID.String(), "type": section.Type()}},
	}
	update := bson.M{
		"$set": bson.M{"sections.$": section, "updatedAt": at},
		"$inc": bson.M{"version": 1},
	}
	return r.updateVersion(ctx, postID, filter, update, ErrSectionNotFound)
}

func (r *MongoRepository) AddSection(ctx context.Context, postID string, section content.Section, at time.Time) (int64, error) {
	update := bson.M{
		"$push": bson.M{"sections": section},
		"$set":  bson.M{"updatedAt": at},
		"$inc":  bson.M{"version": 1},
	}
	return r.updateVersion(ctx, postID, bson.M{"_id": postID}, update, ErrNotFound)
}

func (r *MongoRepository) DeleteSection(ctx context.Context, postID, sectionID string, at time.Time) (int64, error) {
	filter := bson.M{"_id": postID, "sections.id": sectionID}
	update := bson.M{
		"$pull": bson.M{"sections": bson.M{"id": sectionID}},
		"$set":  bson.M{"updatedAt": at},
		"$inc":  bson.M{"version": 1},
	}
	return r.updateVersion(ctx, postID, filter, update, ErrSectionNotFound)
}
