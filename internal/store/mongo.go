package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore implements Store over a mongo database. Cache may be nil,
// in which case every read goes to the database.
type MongoStore struct {
	db    *mongo.Database
	cache *Cache
	log   *zap.SugaredLogger
}

func NewMongoStore(db *mongo.Database, cache *Cache, log *zap.SugaredLogger) *MongoStore {
	return &MongoStore{db: db, cache: cache, log: log}
}

// Connect dials mongo and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *MongoStore) coll(model string) *mongo.Collection {
	return s.db.Collection(model)
}

// cacheable reports whether a read may be served from the cache. Reads
// with skip/limit are always bypassed.
func (s *MongoStore) cacheable(opts FindOptions) bool {
	return s.cache != nil && !opts.DisableCache && opts.Skip == 0 && opts.Limit == 0
}

func (s *MongoStore) Find(ctx context.Context, model string, criteria bson.M, opts FindOptions, out interface{}) error {
	useCache := s.cacheable(opts)
	key := ""
	if useCache {
		key = cacheKey(model, criteria, opts)
		if s.cache.get(ctx, key, out) {
			return nil
		}
	}

	fo := options.Find()
	if opts.Sort != nil {
		fo.SetSort(opts.Sort)
	}
	if opts.Projection != nil {
		fo.SetProjection(opts.Projection)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}

	cur, err := s.coll(model).Find(ctx, criteria, fo)
	if err != nil {
		s.log.Errorw("store find failed", "model", model, "criteria", criteria, "error", err)
		return err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		s.log.Errorw("store find decode failed", "model", model, "error", err)
		return err
	}
	if useCache {
		s.cache.set(ctx, key, out)
	}
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, model string, criteria bson.M, opts FindOptions, out interface{}) error {
	useCache := s.cache != nil && !opts.DisableCache
	key := ""
	if useCache {
		key = cacheKey(model+"/one", criteria, opts)
		if s.cache.get(ctx, key, out) {
			return nil
		}
	}

	fo := options.FindOne()
	if opts.Sort != nil {
		fo.SetSort(opts.Sort)
	}
	if opts.Projection != nil {
		fo.SetProjection(opts.Projection)
	}

	err := s.coll(model).FindOne(ctx, criteria, fo).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		s.log.Errorw("store findOne failed", "model", model, "criteria", criteria, "error", err)
		return err
	}
	if useCache {
		s.cache.set(ctx, key, out)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, model, id string, out interface{}) error {
	return s.FindOne(ctx, model, bson.M{"_id": id}, FindOptions{}, out)
}

func (s *MongoStore) Insert(ctx context.Context, model string, doc interface{}) error {
	if _, err := s.coll(model).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		s.log.Errorw("store insert failed", "model", model, "error", err)
		return err
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, model string, criteria, update bson.M, opts *UpdateOptions) (int64, error) {
	uo := options.Update()
	if opts != nil && len(opts.ArrayFilters) > 0 {
		uo.SetArrayFilters(options.ArrayFilters{Filters: opts.ArrayFilters})
	}
	res, err := s.coll(model).UpdateOne(ctx, criteria, stampUpdate(update), uo)
	if err != nil {
		s.log.Errorw("store update failed", "model", model, "criteria", criteria, "error", err)
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) UpdateMany(ctx context.Context, model string, criteria, update bson.M) (int64, error) {
	res, err := s.coll(model).UpdateMany(ctx, criteria, stampUpdate(update))
	if err != nil {
		s.log.Errorw("store updateMany failed", "model", model, "criteria", criteria, "error", err)
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) FindOneAndUpdate(ctx context.Context, model string, criteria, update bson.M, out interface{}) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll(model).FindOneAndUpdate(ctx, criteria, stampUpdate(update), opts).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		s.log.Errorw("store findOneAndUpdate failed", "model", model, "criteria", criteria, "error", err)
	}
	return err
}

func (s *MongoStore) Delete(ctx context.Context, model string, criteria bson.M) error {
	res, err := s.coll(model).DeleteOne(ctx, criteria)
	if err != nil {
		s.log.Errorw("store delete failed", "model", model, "criteria", criteria, "error", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context, model string, criteria bson.M) (int64, error) {
	n, err := s.coll(model).CountDocuments(ctx, criteria)
	if err != nil {
		s.log.Errorw("store count failed", "model", model, "criteria", criteria, "error", err)
		return 0, err
	}
	return n, nil
}

func (s *MongoStore) Exists(ctx context.Context, model string, criteria bson.M) (bool, error) {
	n, err := s.coll(model).CountDocuments(ctx, criteria, options.Count().SetLimit(1))
	if err != nil {
		s.log.Errorw("store exists failed", "model", model, "criteria", criteria, "error", err)
		return false, err
	}
	return n > 0, nil
}

// Paginate runs a count plus a skip/limit find against the same criteria.
// The two round-trips are not snapshot consistent under concurrent writes.
func (s *MongoStore) Paginate(ctx context.Context, model string, criteria bson.M, q PageQuery, out interface{}) (*Pagination, error) {
	page := clampPage(q.Page)
	limit := clampLimit(q.Limit)

	total, err := s.coll(model).CountDocuments(ctx, criteria)
	if err != nil {
		s.log.Errorw("store paginate count failed", "model", model, "criteria", criteria, "error", err)
		return nil, err
	}

	fo := options.Find().SetSkip((page - 1) * limit).SetLimit(limit)
	if q.Sort != nil {
		fo.SetSort(q.Sort)
	}
	if q.Projection != nil {
		fo.SetProjection(q.Projection)
	}
	cur, err := s.coll(model).Find(ctx, criteria, fo)
	if err != nil {
		s.log.Errorw("store paginate find failed", "model", model, "criteria", criteria, "error", err)
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		s.log.Errorw("store paginate decode failed", "model", model, "error", err)
		return nil, err
	}
	return newPagination(page, limit, total), nil
}

func (s *MongoStore) EnsureIndexes(ctx context.Context, model string, indexes []mongo.IndexModel) error {
	_, err := s.coll(model).Indexes().CreateMany(ctx, indexes)
	return err
}

// stampUpdate copies the update, drops caller-supplied timestamps from
// $set and stamps updated_at.
func stampUpdate(update bson.M) bson.M {
	u := make(bson.M, len(update))
	for k, v := range update {
		u[k] = v
	}
	set := bson.M{}
	if cur, ok := u["$set"].(bson.M); ok {
		for k, v := range cur {
			if k == "created_at" || k == "updated_at" {
				continue
			}
			set[k] = v
		}
	}
	set["updated_at"] = time.Now().UTC()
	u["$set"] = set
	return u
}
