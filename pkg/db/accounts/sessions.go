package accounts

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
)

var ErrSessionNotFound = errors.New("session not found")

func (dbService *AccountDBService) CreateSession(session userTypes.Session) (userTypes.Session, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	session.CreatedAt = time.Now().Unix()
	_, err := dbService.collectionSessions().InsertOne(ctx, session)
	return session, err
}

func (dbService *AccountDBService) GetSession(sessionID string) (userTypes.Session, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var session userTypes.Session
	err := dbService.collectionSessions().FindOne(ctx, bson.M{"sessionID": sessionID}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return session, ErrSessionNotFound
	}
	if err != nil {
		return session, err
	}

	// the TTL monitor removes expired documents with a delay, do not trust it
	if session.ExpiresAt.Before(time.Now()) {
		return session, ErrSessionNotFound
	}
	return session, nil
}

func (dbService *AccountDBService) DeleteSession(sessionID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionSessions().DeleteOne(ctx, bson.M{"sessionID": sessionID})
	return err
}

func (dbService *AccountDBService) DeleteSessionsForAccount(accountID string) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionSessions().DeleteMany(ctx, bson.M{"accountID": accountID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
