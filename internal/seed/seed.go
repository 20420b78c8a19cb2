// Package seed loads event content and team accounts into the store.
// Every operation is an idempotent upsert.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"
	"electromatrix/internal/service"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var defaultData []byte

// TeamAccount is a team login before hashing
type TeamAccount struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Data is a full seed document
type Data struct {
	Teams    []TeamAccount           `yaml:"teams"`
	Grid     []model.GridQuestion    `yaml:"grid"`
	Sections []model.SectionQuestion `yaml:"sections"`
	Metas    []model.SectionMeta     `yaml:"metas"`
}

// Default returns the built-in seed document
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Parse decodes a seed document
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding seed data: %w", err)
	}
	for i, q := range d.Grid {
		if q.Prompt == "" || q.CorrectAnswer == "" {
			return nil, fmt.Errorf("grid question %d: prompt and correctAnswer are required", i+1)
		}
		if q.Type != model.QuestionTypeMCQ && q.Type != model.QuestionTypeText {
			return nil, fmt.Errorf("grid question %d: unknown type %q", i+1, q.Type)
		}
		if q.Type == model.QuestionTypeMCQ && len(q.Options) == 0 {
			return nil, fmt.Errorf("grid question %d: mcq without options", i+1)
		}
	}
	for _, s := range d.Sections {
		if s.Section < 1 || s.Section > service.SectionCount {
			return nil, fmt.Errorf("section question for unknown section %d", s.Section)
		}
	}
	return &d, nil
}

// TeamResult counts what Teams did
type TeamResult struct {
	Created, Updated, Skipped int
}

// Seeder writes seed data through the repositories
type Seeder struct {
	store *repository.Store
	log   *zap.Logger
	hash  func(string) (string, error)
}

// NewSeeder creates a seeder
func NewSeeder(store *repository.Store, log *zap.Logger) *Seeder {
	return &Seeder{store: store, log: log, hash: service.HashPassword}
}

// Teams creates missing teams. Existing teams keep their password unless
// reset is set.
func (s *Seeder) Teams(ctx context.Context, accounts []TeamAccount, reset bool) (TeamResult, error) {
	var res TeamResult
	for _, acc := range accounts {
		existing, err := s.store.Teams.GetByUsername(ctx, acc.Username)
		if err != nil {
			return res, fmt.Errorf("failed to look up %s: %w", acc.Username, err)
		}
		if existing != nil && !reset {
			res.Skipped++
			s.log.Info("team exists, skipping", zap.String("team", acc.Username))
			continue
		}

		hash, err := s.hash(acc.Password)
		if err != nil {
			return res, err
		}
		if existing != nil {
			if err := s.store.Teams.SetPassword(ctx, existing.ID, hash); err != nil {
				return res, fmt.Errorf("failed to update %s: %w", acc.Username, err)
			}
			res.Updated++
			s.log.Info("team password reset", zap.String("team", acc.Username), zap.String("password", mask(acc.Password)))
			continue
		}

		if err := s.store.Teams.Create(ctx, &model.Team{Username: acc.Username, PasswordHash: hash}); err != nil {
			return res, fmt.Errorf("failed to create %s: %w", acc.Username, err)
		}
		res.Created++
		s.log.Info("team created", zap.String("team", acc.Username), zap.String("password", mask(acc.Password)))
	}
	return res, nil
}

// Grid upserts the question pool keyed on prompt and image
func (s *Seeder) Grid(ctx context.Context, questions []model.GridQuestion) (int, error) {
	for i := range questions {
		q := questions[i]
		q.ID = ""
		if err := s.store.Questions.Upsert(ctx, &q); err != nil {
			return i, fmt.Errorf("failed to upsert grid question %d: %w", i+1, err)
		}
	}
	s.log.Info("grid pool seeded", zap.Int("questions", len(questions)))
	return len(questions), nil
}

// Sections upserts the meta-questions and composite images
func (s *Seeder) Sections(ctx context.Context, questions []model.SectionQuestion, metas []model.SectionMeta) error {
	for i := range questions {
		q := questions[i]
		if err := s.store.Sections.UpsertQuestion(ctx, &q); err != nil {
			return fmt.Errorf("failed to upsert section %d question %d: %w", q.Section, q.Idx, err)
		}
	}
	for i := range metas {
		m := metas[i]
		if err := s.store.Sections.UpsertMeta(ctx, &m); err != nil {
			return fmt.Errorf("failed to upsert section %d meta: %w", m.Section, err)
		}
	}
	s.log.Info("sections seeded", zap.Int("questions", len(questions)), zap.Int("metas", len(metas)))
	return nil
}

func mask(pw string) string {
	if len(pw) <= 4 {
		return "****"
	}
	return pw[:2] + "****" + pw[len(pw)-2:]
}
