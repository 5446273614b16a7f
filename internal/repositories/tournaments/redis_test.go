package tournaments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/repositories/tournaments"
	"github.com/veramon/reunited-api/internal/testutils"
)

const testTournamentID = "tourney_123"

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    tournaments.Repository
	clock   *clock.Fixed
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.clock = clock.NewFixed(time.Unix(1700000000, 0))

	repo, err := tournaments.NewRedis(&tournaments.RedisConfig{
		Client: client,
		Clock:  s.clock,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) newTournament() *veramon.Tournament {
	return &veramon.Tournament{
		ID:              testTournamentID,
		Name:            "Volcano Cup",
		HostID:          "trainer_host",
		Status:          veramon.TournamentStatusRegistration,
		MaxParticipants: 8,
		EntryFee:        50,
		ExpiresAt:       s.clock.Now().Add(time.Hour).Unix(),
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	_, err := s.repo.Create(s.ctx, tournaments.CreateInput{Tournament: s.newTournament()})
	s.NoError(err)

	got, err := s.repo.Get(s.ctx, tournaments.GetInput{ID: testTournamentID})
	s.NoError(err)
	s.Equal("Volcano Cup", got.Tournament.Name)
	s.Equal(veramon.TournamentStatusRegistration, got.Tournament.Status)

	_, err = s.repo.Create(s.ctx, tournaments.CreateInput{Tournament: s.newTournament()})
	s.True(errors.IsAlreadyExists(err))

	_, err = s.repo.Get(s.ctx, tournaments.GetInput{ID: "tourney_missing"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdate() {
	tournament := s.newTournament()
	_, err := s.repo.Create(s.ctx, tournaments.CreateInput{Tournament: tournament})
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	tournament.Participants = []string{"trainer_a", "trainer_b"}
	tournament.PrizePool = 100
	output, err := s.repo.Update(s.ctx, tournaments.UpdateInput{Tournament: tournament})

	s.NoError(err)
	s.Equal(s.clock.Now().Unix(), output.Tournament.UpdatedAt)

	got, err := s.repo.Get(s.ctx, tournaments.GetInput{ID: testTournamentID})
	s.NoError(err)
	s.Len(got.Tournament.Participants, 2)
	s.Equal(int64(100), got.Tournament.PrizePool)
}

func (s *RedisRepositoryTestSuite) TestListExpired() {
	tournament := s.newTournament()
	_, err := s.repo.Create(s.ctx, tournaments.CreateInput{Tournament: tournament})
	s.Require().NoError(err)

	s.Run("registration before deadline is not listed", func() {
		output, err := s.repo.ListExpired(s.ctx, tournaments.ListExpiredInput{Now: s.clock.Now().Unix()})
		s.NoError(err)
		s.Empty(output.IDs)
	})

	s.Run("registration past deadline is listed", func() {
		output, err := s.repo.ListExpired(s.ctx, tournaments.ListExpiredInput{
			Now: s.clock.Now().Add(2 * time.Hour).Unix(),
		})
		s.NoError(err)
		s.Equal([]string{testTournamentID}, output.IDs)
	})

	s.Run("started tournament leaves the index", func() {
		tournament.Status = veramon.TournamentStatusInProgress
		_, err := s.repo.Update(s.ctx, tournaments.UpdateInput{Tournament: tournament})
		s.Require().NoError(err)

		output, err := s.repo.ListExpired(s.ctx, tournaments.ListExpiredInput{
			Now: s.clock.Now().Add(2 * time.Hour).Unix(),
		})
		s.NoError(err)
		s.Empty(output.IDs)
	})
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
