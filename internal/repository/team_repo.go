package repository

import (
	"context"
	"fmt"
	"time"

	"electromatrix/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type teamRepo struct {
	collection *mongo.Collection
}

// NewTeamRepo creates a Mongo team repository
func NewTeamRepo(db *mongo.Database) TeamRepo {
	return &teamRepo{collection: db.Collection(teamsColl)}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	if team.ID == "" {
		team.ID = newID()
	}
	if team.UnlockedSection == 0 {
		team.UnlockedSection = 1
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, team)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	ok, err := findOne(ctx, r.collection, bson.M{"_id": id}, &team)
	if err != nil || !ok {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetByUsername(ctx context.Context, username string) (*model.Team, error) {
	var team model.Team
	ok, err := findOne(ctx, r.collection, bson.M{"username": username}, &team)
	if err != nil || !ok {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context) ([]*model.Team, error) {
	var teams []*model.Team
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{}, &teams, opts); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepo) SetPassword(ctx context.Context, id, hash string) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password": hash}})
	return err
}

func (r *teamRepo) AddPoints(ctx context.Context, id string, delta int) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"points": delta}})
	return err
}

func (r *teamRepo) RaiseUnlockedSection(ctx context.Context, id string, section int) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$max": bson.M{"unlockedSection": section}})
	return err
}

func (r *teamRepo) MarkRunStarted(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "runStartedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"runStartedAt": at}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark run started: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *teamRepo) MarkRunFinished(ctx context.Context, id string, at time.Time, totalSec int64) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "runFinishedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"runFinishedAt": at, "runTotalTimeSec": totalSec}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark run finished: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *teamRepo) ResetRun(ctx context.Context, id string, startedAt time.Time) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"points": 0, "unlockedSection": 1, "runStartedAt": startedAt},
		"$unset": bson.M{"runFinishedAt": "", "runTotalTimeSec": ""},
	})
	return err
}
