package accounts

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accounts-portal/accounts-portal/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_ACCOUNTS = "accounts"
	COLLECTION_NAME_SESSIONS = "sessions"
)

type AccountDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewAccountDBService(configs db.DBConfig) (*AccountDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	adbSc := &AccountDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	adbSc.ensureIndexes()
	return adbSc, nil
}

func (dbService *AccountDBService) getDBName() string {
	return dbService.DBNamePrefix + "accounts-portal"
}

func (dbService *AccountDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *AccountDBService) collectionAccounts() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_ACCOUNTS)
}

func (dbService *AccountDBService) collectionSessions() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_SESSIONS)
}

func (dbService *AccountDBService) ensureIndexes() {
	slog.Debug("Ensuring indexes for accounts DB")

	if err := dbService.CreateIndexesForAccounts(); err != nil {
		slog.Error("Error creating indexes for accounts", slog.String("error", err.Error()))
	}
	if err := dbService.CreateIndexesForSessions(); err != nil {
		slog.Error("Error creating indexes for sessions", slog.String("error", err.Error()))
	}
}

// CreateIndexesForAccounts sets up the unique constraints on username and
// email. Simultaneous registrations racing on the same value are resolved
// here, not in the validator.
func (dbService *AccountDBService) CreateIndexesForAccounts() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionAccounts().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "username", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "email", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "timestamps.createdAt", Value: 1},
				},
			},
		},
	)
	return err
}

func (dbService *AccountDBService) CreateIndexesForSessions() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionSessions().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "sessionID", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "expiresAt", Value: 1},
				},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
	)
	return err
}
