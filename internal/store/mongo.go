package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultMongoDatabase   = "NGC"
	defaultMongoCollection = "users"
)

// Mongo stores users as documents {name, email, password}.
type Mongo struct {
	client *mongo.Client
	users  *mongo.Collection
	logger *zap.Logger
}

// NewMongo connects, pings and creates the unique email index.
func NewMongo(ctx context.Context, cfg *MongoConfig, logger *zap.Logger) (*Mongo, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("store.mongo.uri is required")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	database := strings.TrimSpace(cfg.Database)
	if database == "" {
		database = defaultMongoDatabase
	}
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		collection = defaultMongoCollection
	}

	users := client.Database(database).Collection(collection)

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}
	if _, err := users.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create unique email index: %w", err)
	}

	logger.Info("mongo user store ready",
		zap.String("database", database),
		zap.String("collection", collection),
	)

	return &Mongo{client: client, users: users, logger: logger}, nil
}

func (s *Mongo) Create(ctx context.Context, user *User) error {
	doc := bson.M{
		"name":     user.Name,
		"email":    NormalizeEmail(user.Email),
		"password": user.Password,
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Mongo) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.users.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
