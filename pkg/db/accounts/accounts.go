package accounts

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
)

// uniqueness violations surfaced as a distinct failure kind
var (
	ErrUsernameTaken = errors.New("username is already taken")
	ErrEmailTaken    = errors.New("email address is already in use")

	ErrAccountNotFound = errors.New("account not found")
)

func (dbService *AccountDBService) CreateAccount(account userTypes.Account) (userTypes.Account, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	account.Timestamps.CreatedAt = time.Now().Unix()

	res, err := dbService.collectionAccounts().InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account, duplicateKeyToFieldError(err)
		}
		return account, err
	}
	account.ID = res.InsertedID.(primitive.ObjectID)
	return account, nil
}

// duplicateKeyToFieldError maps the offending unique index to the
// corresponding sentinel so callers can show a field level message.
func duplicateKeyToFieldError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "email") {
		return ErrEmailTaken
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameTaken
	}
	return err
}

func (dbService *AccountDBService) GetAccountByID(id string) (userTypes.Account, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var account userTypes.Account
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return account, ErrAccountNotFound
	}

	err = dbService.collectionAccounts().FindOne(ctx, bson.M{"_id": objID}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return account, ErrAccountNotFound
	}
	return account, err
}

func (dbService *AccountDBService) GetAccountByUsername(username string) (userTypes.Account, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var account userTypes.Account
	err := dbService.collectionAccounts().FindOne(ctx, bson.M{"username": username}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return account, ErrAccountNotFound
	}
	return account, err
}

func (dbService *AccountDBService) GetAccountByEmail(email string) (userTypes.Account, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var account userTypes.Account
	err := dbService.collectionAccounts().FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return account, ErrAccountNotFound
	}
	return account, err
}

func (dbService *AccountDBService) EmailInUse(email string) (bool, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	count, err := dbService.collectionAccounts().CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (dbService *AccountDBService) CountAccounts() (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	return dbService.collectionAccounts().CountDocuments(ctx, bson.M{})
}

func (dbService *AccountDBService) UpdatePassword(accountID string, newHash string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return ErrAccountNotFound
	}

	update := bson.M{"$set": bson.M{
		"password":                      newHash,
		"timestamps.lastPasswordChange": time.Now().Unix(),
		"timestamps.updatedAt":          time.Now().Unix(),
	}}
	res, err := dbService.collectionAccounts().UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return ErrAccountNotFound
	}
	return nil
}

func (dbService *AccountDBService) SaveLastLogin(accountID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return ErrAccountNotFound
	}

	update := bson.M{"$set": bson.M{
		"timestamps.lastLogin": time.Now().Unix(),
	}}
	_, err = dbService.collectionAccounts().UpdateOne(ctx, bson.M{"_id": objID}, update)
	return err
}
