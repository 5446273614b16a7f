package trainers

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	redisclient "github.com/veramon/reunited-api/internal/redis"
)

const (
	trainerKeyPrefix = "trainer:"

	// Error messages
	errTrainerNil     = "trainer cannot be nil"
	errTrainerIDEmpty = "trainer ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis trainer repository
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

// NewRedis creates a new Redis-backed trainer repository
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
	return trainerKeyPrefix + id
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Trainer == nil {
		return nil, errors.InvalidArgument(errTrainerNil)
	}
	if input.Trainer.ID == "" {
		return nil, errors.InvalidArgument(errTrainerIDEmpty)
	}

	k := key(input.Trainer.ID)

	exists, err := r.client.Exists(ctx, k).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("trainer with ID %s already exists", input.Trainer.ID)
	}

	now := r.clock.Now().Unix()
	if input.Trainer.CreatedAt == 0 {
		input.Trainer.CreatedAt = now
	}
	input.Trainer.UpdatedAt = now

	data, err := json.Marshal(input.Trainer)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal trainer")
	}

	if err := r.client.Set(ctx, k, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to create trainer")
	}

	return &CreateOutput{Trainer: input.Trainer}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTrainerIDEmpty)
	}

	result, err := r.client.Get(ctx, key(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("trainer with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get trainer")
	}

	var trainer veramon.Trainer
	if err := json.Unmarshal([]byte(result), &trainer); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal trainer")
	}

	return &GetOutput{Trainer: &trainer}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Trainer == nil {
		return nil, errors.InvalidArgument(errTrainerNil)
	}
	if input.Trainer.ID == "" {
		return nil, errors.InvalidArgument(errTrainerIDEmpty)
	}

	k := key(input.Trainer.ID)

	exists, err := r.client.Exists(ctx, k).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("trainer with ID %s not found", input.Trainer.ID)
	}

	input.Trainer.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Trainer)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal trainer")
	}

	if err := r.client.Set(ctx, k, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update trainer")
	}

	return &UpdateOutput{Trainer: input.Trainer}, nil
}

func (r *redisRepository) AdjustTokens(ctx context.Context, input AdjustTokensInput) (*AdjustTokensOutput, error) {
	if input.TrainerID == "" {
		return nil, errors.InvalidArgument(errTrainerIDEmpty)
	}

	out, err := r.Get(ctx, GetInput{ID: input.TrainerID})
	if err != nil {
		return nil, err
	}

	trainer := out.Trainer
	newBalance := trainer.Tokens + input.Delta
	if newBalance < 0 {
		return nil, errors.FailedPreconditionf(
			"trainer %s has %d tokens, cannot apply delta %d",
			input.TrainerID, trainer.Tokens, input.Delta,
		)
	}
	trainer.Tokens = newBalance

	updated, err := r.Update(ctx, UpdateInput{Trainer: trainer})
	if err != nil {
		return nil, err
	}

	slog.Debug("adjusted trainer tokens",
		"trainer_id", input.TrainerID,
		"delta", input.Delta,
		"balance", newBalance,
		"reason", input.Reason,
	)

	return &AdjustTokensOutput{Trainer: updated.Trainer}, nil
}
