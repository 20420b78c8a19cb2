package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	teamsColl            = "teams"
	gridQuestionsColl    = "gridquestions"
	assignmentsColl      = "sectiongridassignments"
	responsesColl        = "teamresponses"
	sectionResponseColl  = "teamsectionresponses"
	sectionQuestionsColl = "sectionquestions"
	sectionMetaColl      = "sectionmetas"
	timersColl           = "teamsectiontimers"
)

// NewMongoStore builds Mongo-backed repositories and ensures their indexes
func NewMongoStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	if err := EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &Store{
		Teams:            NewTeamRepo(db),
		Questions:        NewGridQuestionRepo(db),
		Assignments:      NewAssignmentRepo(db),
		Responses:        NewResponseRepo(db),
		SectionResponses: NewSectionResponseRepo(db),
		Sections:         NewSectionRepo(db),
		Timers:           NewTimerRepo(db),
	}, nil
}

type indexSpec struct {
	coll   string
	keys   bson.D
	unique bool
}

// Unique keys back every upsert and the create-once timer.
var indexes = []indexSpec{
	{teamsColl, bson.D{{Key: "username", Value: 1}}, true},
	{gridQuestionsColl, bson.D{{Key: "prompt", Value: 1}, {Key: "imageUrl", Value: 1}}, true},
	{assignmentsColl, bson.D{{Key: "team", Value: 1}, {Key: "section", Value: 1}, {Key: "cell", Value: 1}}, true},
	{assignmentsColl, bson.D{{Key: "team", Value: 1}, {Key: "question", Value: 1}}, false},
	{responsesColl, bson.D{{Key: "team", Value: 1}, {Key: "section", Value: 1}, {Key: "cell", Value: 1}}, true},
	{sectionResponseColl, bson.D{{Key: "team", Value: 1}, {Key: "section", Value: 1}, {Key: "idx", Value: 1}}, true},
	{sectionQuestionsColl, bson.D{{Key: "section", Value: 1}, {Key: "idx", Value: 1}}, true},
	{sectionMetaColl, bson.D{{Key: "section", Value: 1}}, true},
	{timersColl, bson.D{{Key: "team", Value: 1}, {Key: "section", Value: 1}}, true},
}

// EnsureIndexes creates the indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, ix := range indexes {
		model := mongo.IndexModel{
			Keys:    ix.keys,
			Options: options.Index().SetUnique(ix.unique),
		}
		if _, err := db.Collection(ix.coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", ix.coll, err)
		}
	}
	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// findAll runs a query and decodes every document into out
func findAll(ctx context.Context, coll *mongo.Collection, filter any, out any, opts ...*options.FindOptions) error {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// findOne decodes a single document, returning false when none matched
func findOne(ctx context.Context, coll *mongo.Collection, filter any, out any) (bool, error) {
	err := coll.FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func upsertAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}

// recordAttempt is the compare-and-set behind both response repositories. A
// first attempt is an insert that loses to the unique key; later attempts
// only match a row that still holds prevAttempts and is unsolved.
func recordAttempt(ctx context.Context, coll *mongo.Collection, filter bson.M, doc any, set bson.M, prevAttempts int) (bool, error) {
	if prevAttempts == 0 {
		_, err := coll.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to insert attempt: %w", err)
		}
		return true, nil
	}

	filter["attempts"] = prevAttempts
	filter["isCorrect"] = bson.M{"$ne": true}
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update attempt: %w", err)
	}
	return res.MatchedCount == 1, nil
}
