package seed

import (
	"context"
	"testing"

	"electromatrix/internal/config"
	"electromatrix/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func fastSeeder(t *testing.T) (*Seeder, func() int) {
	t.Helper()
	store := memory.NewStore()
	s := NewSeeder(store, zap.NewNop())
	s.hash = func(p string) (string, error) { return "hashed:" + p, nil }
	count := func() int {
		teams, err := store.Teams.List(context.Background())
		require.NoError(t, err)
		return len(teams)
	}
	return s, count
}

func TestDefaultData(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	assert.Len(t, d.Teams, 20)
	assert.Len(t, d.Grid, 24)
	assert.Len(t, d.Sections, 3)
	assert.Len(t, d.Metas, 3)

	pools, err := config.LoadPools("")
	require.NoError(t, err)
	prompts := make(map[string]string)
	for _, p := range pools {
		for _, prompt := range p.Prompts {
			prompts[prompt] = p.Label
		}
	}
	for _, q := range d.Grid {
		label, ok := prompts[q.Prompt]
		if assert.True(t, ok, "prompt missing from pools: %q", q.Prompt) {
			assert.Equal(t, label, q.Pool, q.Prompt)
		}
	}
}

func TestParseRejectsBrokenData(t *testing.T) {
	cases := map[string]string{
		"missing answer": "grid:\n  - {prompt: p, type: text}\n",
		"bad type":       "grid:\n  - {prompt: p, type: essay, correctAnswer: x}\n",
		"mcq no options": "grid:\n  - {prompt: p, type: mcq, correctAnswer: a}\n",
		"bad section":    "sections:\n  - {section: 4, idx: 0, prompt: p, answer: a}\n",
		"not yaml":       "grid: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestTeamsIdempotentWithReset(t *testing.T) {
	s, count := fastSeeder(t)
	ctx := context.Background()
	accounts := []TeamAccount{{"team1", "alphafox12"}, {"team2", "zephyr88"}}

	res, err := s.Teams(ctx, accounts, false)
	require.NoError(t, err)
	assert.Equal(t, TeamResult{Created: 2}, res)

	res, err = s.Teams(ctx, accounts, false)
	require.NoError(t, err)
	assert.Equal(t, TeamResult{Skipped: 2}, res)
	assert.Equal(t, 2, count())

	accounts[0].Password = "newpass99"
	res, err = s.Teams(ctx, accounts[:1], true)
	require.NoError(t, err)
	assert.Equal(t, TeamResult{Updated: 1}, res)

	team, err := s.store.Teams.GetByUsername(ctx, "team1")
	require.NoError(t, err)
	assert.Equal(t, "hashed:newpass99", team.PasswordHash)
}

func TestTeamsUseBcrypt(t *testing.T) {
	store := memory.NewStore()
	s := NewSeeder(store, zap.NewNop())
	ctx := context.Background()

	_, err := s.Teams(ctx, []TeamAccount{{"team1", "alphafox12"}}, false)
	require.NoError(t, err)

	team, err := store.Teams.GetByUsername(ctx, "team1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte("alphafox12")))
}

func TestGridAndSectionsAreIdempotent(t *testing.T) {
	s, _ := fastSeeder(t)
	ctx := context.Background()
	d, err := Default()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		n, err := s.Grid(ctx, d.Grid)
		require.NoError(t, err)
		assert.Equal(t, len(d.Grid), n)
		require.NoError(t, s.Sections(ctx, d.Sections, d.Metas))
	}

	all, err := s.store.Questions.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(d.Grid), "same prompt with a different image is a separate question")

	qs, err := s.store.Sections.Questions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "multiplexer, 2", qs[0].Answer)

	meta, err := s.store.Sections.Meta(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "/images/section3.png", meta.CompositeImageURL)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "al****12", mask("alphafox12"))
	assert.Equal(t, "****", mask("abc"))
}
