package repository

import (
	"context"

	"electromatrix/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sectionRepo struct {
	questions *mongo.Collection
	metas     *mongo.Collection
}

// NewSectionRepo creates a Mongo repository for meta-questions and composites
func NewSectionRepo(db *mongo.Database) SectionRepo {
	return &sectionRepo{
		questions: db.Collection(sectionQuestionsColl),
		metas:     db.Collection(sectionMetaColl),
	}
}

func (r *sectionRepo) Questions(ctx context.Context, section int) ([]*model.SectionQuestion, error) {
	var out []*model.SectionQuestion
	opts := options.Find().SetSort(bson.D{{Key: "idx", Value: 1}})
	if err := findAll(ctx, r.questions, bson.M{"section": section}, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) Question(ctx context.Context, section, idx int) (*model.SectionQuestion, error) {
	var q model.SectionQuestion
	ok, err := findOne(ctx, r.questions, bson.M{"section": section, "idx": idx}, &q)
	if err != nil || !ok {
		return nil, err
	}
	return &q, nil
}

func (r *sectionRepo) Meta(ctx context.Context, section int) (*model.SectionMeta, error) {
	var m model.SectionMeta
	ok, err := findOne(ctx, r.metas, bson.M{"section": section}, &m)
	if err != nil || !ok {
		return nil, err
	}
	return &m, nil
}

func (r *sectionRepo) UpsertQuestion(ctx context.Context, q *model.SectionQuestion) error {
	update := bson.M{
		"$set":         bson.M{"prompt": q.Prompt, "answer": q.Answer},
		"$setOnInsert": bson.M{"_id": newID()},
	}
	var stored model.SectionQuestion
	err := r.questions.FindOneAndUpdate(ctx, bson.M{"section": q.Section, "idx": q.Idx}, update, upsertAfter()).Decode(&stored)
	if err != nil {
		return err
	}
	q.ID = stored.ID
	return nil
}

func (r *sectionRepo) UpsertMeta(ctx context.Context, m *model.SectionMeta) error {
	_, err := r.metas.UpdateOne(ctx,
		bson.M{"section": m.Section},
		bson.M{"$set": bson.M{"compositeImageUrl": m.CompositeImageURL}},
		options.Update().SetUpsert(true),
	)
	return err
}
