package repository

import (
	"context"

	"electromatrix/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a Mongo grid response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{collection: db.Collection(responsesColl)}
}

func (r *responseRepo) Get(ctx context.Context, team string, section, cell int) (*model.TeamResponse, error) {
	var resp model.TeamResponse
	ok, err := findOne(ctx, r.collection, cellFilter(team, section, cell), &resp)
	if err != nil || !ok {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepo) ListBySection(ctx context.Context, team string, section int) ([]*model.TeamResponse, error) {
	var out []*model.TeamResponse
	if err := findAll(ctx, r.collection, bson.M{"team": team, "section": section}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *responseRepo) ListByTeam(ctx context.Context, team string) ([]*model.TeamResponse, error) {
	var out []*model.TeamResponse
	if err := findAll(ctx, r.collection, bson.M{"team": team}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *responseRepo) Record(ctx context.Context, resp *model.TeamResponse, prevAttempts int) (bool, error) {
	if prevAttempts == 0 && resp.ID == "" {
		resp.ID = newID()
	}
	set := bson.M{
		"questionType": resp.QuestionType,
		"answerGiven":  resp.AnswerGiven,
		"isCorrect":    resp.IsCorrect,
		"attempts":     resp.Attempts,
		"answeredAt":   resp.AnsweredAt,
	}
	return recordAttempt(ctx, r.collection, cellFilter(resp.Team, resp.Section, resp.Cell), resp, set, prevAttempts)
}

func (r *responseRepo) CountByTeam(ctx context.Context, team string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"team": team})
}

func (r *responseRepo) DeleteByTeam(ctx context.Context, team string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"team": team})
	return err
}

type sectionResponseRepo struct {
	collection *mongo.Collection
}

// NewSectionResponseRepo creates a Mongo meta-question response repository
func NewSectionResponseRepo(db *mongo.Database) SectionResponseRepo {
	return &sectionResponseRepo{collection: db.Collection(sectionResponseColl)}
}

func idxFilter(team string, section, idx int) bson.M {
	return bson.M{"team": team, "section": section, "idx": idx}
}

func (r *sectionResponseRepo) Get(ctx context.Context, team string, section, idx int) (*model.TeamSectionResponse, error) {
	var resp model.TeamSectionResponse
	ok, err := findOne(ctx, r.collection, idxFilter(team, section, idx), &resp)
	if err != nil || !ok {
		return nil, err
	}
	return &resp, nil
}

func (r *sectionResponseRepo) ListBySection(ctx context.Context, team string, section int) ([]*model.TeamSectionResponse, error) {
	var out []*model.TeamSectionResponse
	if err := findAll(ctx, r.collection, bson.M{"team": team, "section": section}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionResponseRepo) Record(ctx context.Context, resp *model.TeamSectionResponse, prevAttempts int) (bool, error) {
	if prevAttempts == 0 && resp.ID == "" {
		resp.ID = newID()
	}
	set := bson.M{
		"answerGiven": resp.AnswerGiven,
		"isCorrect":   resp.IsCorrect,
		"attempts":    resp.Attempts,
		"answeredAt":  resp.AnsweredAt,
	}
	return recordAttempt(ctx, r.collection, idxFilter(resp.Team, resp.Section, resp.Idx), resp, set, prevAttempts)
}

func (r *sectionResponseRepo) CountSolved(ctx context.Context, team string, section int) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"team": team, "section": section, "isCorrect": true})
}

func (r *sectionResponseRepo) CountByTeam(ctx context.Context, team string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"team": team})
}

func (r *sectionResponseRepo) DeleteByTeam(ctx context.Context, team string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"team": team})
	return err
}
