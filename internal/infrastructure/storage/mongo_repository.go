package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newsbytes/internal/config"
	"newsbytes/internal/domain"
	"newsbytes/internal/ports"
)

// Collection names used when the config leaves them blank.
const (
	defaultArticlesCollection = "news_articles"
	defaultStatusCollection   = "status_checks"
)

const connectTimeout = 10 * time.Second

// MongoRepository persists articles and status checks in MongoDB.
type MongoRepository struct {
	client   *mongo.Client
	articles *mongo.Collection
	status   *mongo.Collection
	logger   *slog.Logger
}

var (
	_ ports.ArticleRepository = (*MongoRepository)(nil)
	_ ports.StatusRepository  = (*MongoRepository)(nil)
)

// NewMongoRepository connects to MongoDB, verifies the connection and
// prepares the indexes the admin panel queries rely on.
func NewMongoRepository(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*MongoRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	articlesCollection := cfg.Collections.Articles
	if articlesCollection == "" {
		articlesCollection = defaultArticlesCollection
	}
	statusCollection := cfg.Collections.Status
	if statusCollection == "" {
		statusCollection = defaultStatusCollection
	}

	db := client.Database(cfg.Name)
	repo := &MongoRepository{
		client:   client,
		articles: db.Collection(articlesCollection),
		status:   db.Collection(statusCollection),
		logger:   logger,
	}

	if err := repo.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	logger.Info("connected to mongodb", "database", cfg.Name)
	return repo, nil
}

func (r *MongoRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "published_at", Value: -1}}},
	}
	_, err := r.articles.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert stores a single article.
func (r *MongoRepository) Insert(ctx context.Context, article domain.Article) error {
	if _, err := r.articles.InsertOne(ctx, article); err != nil {
		return fmt.Errorf("insert article %s: %w", article.ID, err)
	}
	return nil
}

// List returns articles newest-first, optionally filtered by category.
func (r *MongoRepository) List(ctx context.Context, category string, limit int64) ([]domain.Article, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.articles.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	defer cursor.Close(ctx)

	articles := []domain.Article{}
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}

// GetByID loads one article or domain.ErrNotFound.
func (r *MongoRepository) GetByID(ctx context.Context, id string) (domain.Article, error) {
	var article domain.Article
	err := r.articles.FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Article{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("find article %s: %w", id, err)
	}
	return article, nil
}

// Delete removes one article or reports domain.ErrNotFound.
func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.articles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InsertStatus stores a client heartbeat.
func (r *MongoRepository) InsertStatus(ctx context.Context, check domain.StatusCheck) error {
	if _, err := r.status.InsertOne(ctx, check); err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

// ListStatus returns up to limit heartbeat records.
func (r *MongoRepository) ListStatus(ctx context.Context, limit int64) ([]domain.StatusCheck, error) {
	cursor, err := r.status.Find(ctx, bson.M{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("find status checks: %w", err)
	}
	defer cursor.Close(ctx)

	checks := []domain.StatusCheck{}
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, fmt.Errorf("decode status checks: %w", err)
	}
	return checks, nil
}

// Close disconnects from MongoDB.
func (r *MongoRepository) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}
