package battles

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
	battleKeyPrefix = "battle:"
	expiryIndexKey  = "battle:expiry"

	// Error messages
	errBattleNil     = "battle cannot be nil"
	errBattleIDEmpty = "battle ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis battle repository
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

// NewRedis creates a new Redis-backed battle repository
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
	return battleKeyPrefix + id
}

// active battles are tracked in a sorted set scored by their action
// deadline so the sweeper can find stale ones with one range query
func (r *redisRepository) writeWithIndex(ctx context.Context, battle *veramon.Battle) error {
	data, err := json.Marshal(battle)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal battle")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key(battle.ID), data, 0)

	if battle.Status == veramon.BattleStatusActive && battle.ExpiresAt > 0 {
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
			Score:  float64(battle.ExpiresAt),
			Member: battle.ID,
		})
	} else {
		pipe.ZRem(ctx, expiryIndexKey, battle.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to write battle")
	}
	return nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Battle == nil {
		return nil, errors.InvalidArgument(errBattleNil)
	}
	if input.Battle.ID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	exists, err := r.client.Exists(ctx, key(input.Battle.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("battle with ID %s already exists", input.Battle.ID)
	}

	now := r.clock.Now().Unix()
	if input.Battle.CreatedAt == 0 {
		input.Battle.CreatedAt = now
	}
	input.Battle.UpdatedAt = now

	if err := r.writeWithIndex(ctx, input.Battle); err != nil {
		return nil, err
	}

	return &CreateOutput{Battle: input.Battle}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	result, err := r.client.Get(ctx, key(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("battle with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get battle")
	}

	var battle veramon.Battle
	if err := json.Unmarshal([]byte(result), &battle); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal battle")
	}

	return &GetOutput{Battle: &battle}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Battle == nil {
		return nil, errors.InvalidArgument(errBattleNil)
	}
	if input.Battle.ID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	exists, err := r.client.Exists(ctx, key(input.Battle.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("battle with ID %s not found", input.Battle.ID)
	}

	input.Battle.UpdatedAt = r.clock.Now().Unix()

	if err := r.writeWithIndex(ctx, input.Battle); err != nil {
		return nil, err
	}

	return &UpdateOutput{Battle: input.Battle}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	exists, err := r.client.Exists(ctx, key(input.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("battle with ID %s not found", input.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key(input.ID))
	pipe.ZRem(ctx, expiryIndexKey, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete battle")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListExpired(ctx context.Context, input ListExpiredInput) (*ListExpiredOutput, error) {
	ids, err := r.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(input.Now, 10),
	}).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list expired battles")
	}

	return &ListExpiredOutput{IDs: ids}, nil
}
