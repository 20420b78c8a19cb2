package repository

import (
	"context"

	"electromatrix/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type assignmentRepo struct {
	collection *mongo.Collection
}

// NewAssignmentRepo creates a Mongo grid assignment repository
func NewAssignmentRepo(db *mongo.Database) AssignmentRepo {
	return &assignmentRepo{collection: db.Collection(assignmentsColl)}
}

func cellFilter(team string, section, cell int) bson.M {
	return bson.M{"team": team, "section": section, "cell": cell}
}

func (r *assignmentRepo) Get(ctx context.Context, team string, section, cell int) (*model.SectionGridAssignment, error) {
	var a model.SectionGridAssignment
	ok, err := findOne(ctx, r.collection, cellFilter(team, section, cell), &a)
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListBySection(ctx context.Context, team string, section int) ([]*model.SectionGridAssignment, error) {
	var out []*model.SectionGridAssignment
	opts := options.Find().SetSort(bson.D{{Key: "cell", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"team": team, "section": section}, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) ListByTeam(ctx context.Context, team string) ([]*model.SectionGridAssignment, error) {
	var out []*model.SectionGridAssignment
	opts := options.Find().SetSort(bson.D{{Key: "section", Value: 1}, {Key: "cell", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"team": team}, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) Upsert(ctx context.Context, team string, section, cell int, questionID string) (*model.SectionGridAssignment, error) {
	update := bson.M{
		"$set":         bson.M{"question": questionID},
		"$setOnInsert": bson.M{"_id": newID()},
	}
	var a model.SectionGridAssignment
	if err := r.collection.FindOneAndUpdate(ctx, cellFilter(team, section, cell), update, upsertAfter()).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) Delete(ctx context.Context, team string, section, cell int) error {
	_, err := r.collection.DeleteOne(ctx, cellFilter(team, section, cell))
	return err
}
