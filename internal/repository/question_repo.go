package repository

import (
	"context"

	"electromatrix/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type gridQuestionRepo struct {
	collection *mongo.Collection
}

// NewGridQuestionRepo creates a Mongo grid question repository
func NewGridQuestionRepo(db *mongo.Database) GridQuestionRepo {
	return &gridQuestionRepo{collection: db.Collection(gridQuestionsColl)}
}

func (r *gridQuestionRepo) All(ctx context.Context) ([]*model.GridQuestion, error) {
	var questions []*model.GridQuestion
	if err := findAll(ctx, r.collection, bson.M{}, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *gridQuestionRepo) GetByID(ctx context.Context, id string) (*model.GridQuestion, error) {
	var q model.GridQuestion
	ok, err := findOne(ctx, r.collection, bson.M{"_id": id}, &q)
	if err != nil || !ok {
		return nil, err
	}
	return &q, nil
}

func (r *gridQuestionRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.GridQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []*model.GridQuestion
	if err := findAll(ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *gridQuestionRepo) Upsert(ctx context.Context, q *model.GridQuestion) error {
	update := bson.M{
		"$set": bson.M{
			"type":          q.Type,
			"options":       q.Options,
			"correctAnswer": q.CorrectAnswer,
			"pool":          q.Pool,
		},
		"$setOnInsert": bson.M{"_id": newID()},
	}
	var stored model.GridQuestion
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"prompt": q.Prompt, "imageUrl": q.ImageURL},
		update, upsertAfter(),
	).Decode(&stored)
	if err != nil {
		return err
	}
	q.ID = stored.ID
	return nil
}
