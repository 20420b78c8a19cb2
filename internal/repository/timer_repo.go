package repository

import (
	"context"
	"fmt"
	"time"

	"electromatrix/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type timerRepo struct {
	collection *mongo.Collection
}

// NewTimerRepo creates a Mongo section timer repository
func NewTimerRepo(db *mongo.Database) TimerRepo {
	return &timerRepo{collection: db.Collection(timersColl)}
}

func (r *timerRepo) Get(ctx context.Context, team string, section int) (*model.TeamSectionTimer, error) {
	var t model.TeamSectionTimer
	ok, err := findOne(ctx, r.collection, bson.M{"team": team, "section": section}, &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

func (r *timerRepo) Create(ctx context.Context, t *model.TeamSectionTimer) (*model.TeamSectionTimer, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	_, err := r.collection.InsertOne(ctx, t)
	if err == nil {
		return t, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to create timer: %w", err)
	}

	// Lost the race: the first timer wins.
	existing, err := r.Get(ctx, t.Team, t.Section)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("timer for section %d vanished after duplicate insert", t.Section)
	}
	return existing, nil
}

func (r *timerRepo) Stop(ctx context.Context, team string, section int, at time.Time, reason model.StopReason) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"team": team, "section": section, "stoppedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"stoppedAt": at, "stopReason": reason}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *timerRepo) CountByTeam(ctx context.Context, team string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"team": team})
}

func (r *timerRepo) DeleteByTeam(ctx context.Context, team string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"team": team})
	return err
}
