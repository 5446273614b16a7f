package tournaments

import (
	"context"
	"encoding/json"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	redisclient "github.com/veramon/reunited-api/internal/redis"
)

const (
	tournamentKeyPrefix = "tournament:"
	expiryIndexKey      = "tournament:expiry"

	// Error messages
	errTournamentNil     = "tournament cannot be nil"
	errTournamentIDEmpty = "tournament ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis tournament repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed tournament repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func key(id string) string {
	return tournamentKeyPrefix + id
}

// only tournaments still collecting registrations are indexed; once the
// bracket starts the host drives progress and nothing times out
func (r *redisRepository) writeWithIndex(ctx context.Context, tournament *veramon.Tournament) error {
	data, err := json.Marshal(tournament)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal tournament")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key(tournament.ID), data, 0)

	if tournament.Status == veramon.TournamentStatusRegistration && tournament.ExpiresAt > 0 {
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
			Score:  float64(tournament.ExpiresAt),
			Member: tournament.ID,
		})
	} else {
		pipe.ZRem(ctx, expiryIndexKey, tournament.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to write tournament")
	}
	return nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Tournament == nil {
		return nil, errors.InvalidArgument(errTournamentNil)
	}
	if input.Tournament.ID == "" {
		return nil, errors.InvalidArgument(errTournamentIDEmpty)
	}

	exists, err := r.client.Exists(ctx, key(input.Tournament.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("tournament with ID %s already exists", input.Tournament.ID)
	}

	now := r.clock.Now().Unix()
	if input.Tournament.CreatedAt == 0 {
		input.Tournament.CreatedAt = now
	}
	input.Tournament.UpdatedAt = now

	if err := r.writeWithIndex(ctx, input.Tournament); err != nil {
		return nil, err
	}

	return &CreateOutput{Tournament: input.Tournament}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTournamentIDEmpty)
	}

	result, err := r.client.Get(ctx, key(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("tournament with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get tournament")
	}

	var tournament veramon.Tournament
	if err := json.Unmarshal([]byte(result), &tournament); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal tournament")
	}

	return &GetOutput{Tournament: &tournament}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Tournament == nil {
		return nil, errors.InvalidArgument(errTournamentNil)
	}
	if input.Tournament.ID == "" {
		return nil, errors.InvalidArgument(errTournamentIDEmpty)
	}

	exists, err := r.client.Exists(ctx, key(input.Tournament.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("tournament with ID %s not found", input.Tournament.ID)
	}

	input.Tournament.UpdatedAt = r.clock.Now().Unix()

	if err := r.writeWithIndex(ctx, input.Tournament); err != nil {
		return nil, err
	}

	return &UpdateOutput{Tournament: input.Tournament}, nil
}

func (r *redisRepository) ListExpired(ctx context.Context, input ListExpiredInput) (*ListExpiredOutput, error) {
	ids, err := r.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(input.Now, 10),
	}).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list expired tournaments")
	}

	return &ListExpiredOutput{IDs: ids}, nil
}
