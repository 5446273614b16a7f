package trades

import (
	"context"
	"encoding/json"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	redisclient "github.com/veramon/reunited-api/internal/redis"
	"github.com/veramon/reunited-api/internal/repositories/captures"
)

const (
	tradeKeyPrefix = "trade:"
	lockKeyPrefix  = "trade:lock:"
	expiryIndexKey = "trade:expiry"

	// Error messages
	errTradeNil     = "trade cannot be nil"
	errTradeIDEmpty = "trade ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis trade repository
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

// NewRedis creates a new Redis-backed trade repository
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
	return tradeKeyPrefix + id
}

func lockKey(captureID string) string {
	return lockKeyPrefix + captureID
}

// open trades sit in a sorted set scored by deadline for the sweeper
func (r *redisRepository) writeWithIndex(ctx context.Context, trade *veramon.Trade) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal trade")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key(trade.ID), data, 0)

	if !trade.Terminal() && trade.ExpiresAt > 0 {
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
			Score:  float64(trade.ExpiresAt),
			Member: trade.ID,
		})
	} else {
		pipe.ZRem(ctx, expiryIndexKey, trade.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to write trade")
	}
	return nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Trade == nil {
		return nil, errors.InvalidArgument(errTradeNil)
	}
	if input.Trade.ID == "" {
		return nil, errors.InvalidArgument(errTradeIDEmpty)
	}

	exists, err := r.client.Exists(ctx, key(input.Trade.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("trade with ID %s already exists", input.Trade.ID)
	}

	now := r.clock.Now().Unix()
	if input.Trade.CreatedAt == 0 {
		input.Trade.CreatedAt = now
	}
	input.Trade.UpdatedAt = now

	if err := r.writeWithIndex(ctx, input.Trade); err != nil {
		return nil, err
	}

	return &CreateOutput{Trade: input.Trade}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTradeIDEmpty)
	}

	result, err := r.client.Get(ctx, key(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("trade with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get trade")
	}

	var trade veramon.Trade
	if err := json.Unmarshal([]byte(result), &trade); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal trade")
	}

	return &GetOutput{Trade: &trade}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Trade == nil {
		return nil, errors.InvalidArgument(errTradeNil)
	}
	if input.Trade.ID == "" {
		return nil, errors.InvalidArgument(errTradeIDEmpty)
	}

	exists, err := r.client.Exists(ctx, key(input.Trade.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("trade with ID %s not found", input.Trade.ID)
	}

	input.Trade.UpdatedAt = r.clock.Now().Unix()

	if err := r.writeWithIndex(ctx, input.Trade); err != nil {
		return nil, err
	}

	return &UpdateOutput{Trade: input.Trade}, nil
}

func (r *redisRepository) ListExpired(ctx context.Context, input ListExpiredInput) (*ListExpiredOutput, error) {
	ids, err := r.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(input.Now, 10),
	}).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list expired trades")
	}

	return &ListExpiredOutput{IDs: ids}, nil
}

func (r *redisRepository) LockItem(ctx context.Context, input LockItemInput) (*LockItemOutput, error) {
	if input.TradeID == "" {
		return nil, errors.InvalidArgument(errTradeIDEmpty)
	}
	if input.CaptureID == "" {
		return nil, errors.InvalidArgument("capture ID cannot be empty")
	}

	ok, err := r.client.SetNX(ctx, lockKey(input.CaptureID), input.TradeID, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock capture %s", input.CaptureID)
	}
	if !ok {
		holder, err := r.client.Get(ctx, lockKey(input.CaptureID)).Result()
		if err != nil && err != redis.Nil {
			return nil, errors.Wrapf(err, "failed to read lock for capture %s", input.CaptureID)
		}
		if holder == input.TradeID {
			// Already ours, locking is idempotent within a trade
			return &LockItemOutput{}, nil
		}
		return nil, errors.FailedPreconditionf(
			"capture %s is already offered in another trade", input.CaptureID)
	}

	return &LockItemOutput{}, nil
}

func (r *redisRepository) UnlockItem(ctx context.Context, input UnlockItemInput) (*UnlockItemOutput, error) {
	if input.CaptureID == "" {
		return nil, errors.InvalidArgument("capture ID cannot be empty")
	}

	holder, err := r.client.Get(ctx, lockKey(input.CaptureID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &UnlockItemOutput{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read lock for capture %s", input.CaptureID)
	}
	if holder != input.TradeID {
		return &UnlockItemOutput{}, nil
	}

	if err := r.client.Del(ctx, lockKey(input.CaptureID)).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to unlock capture %s", input.CaptureID)
	}

	return &UnlockItemOutput{}, nil
}

func (r *redisRepository) CompleteSwap(ctx context.Context, input CompleteSwapInput) (*CompleteSwapOutput, error) {
	if input.Trade == nil {
		return nil, errors.InvalidArgument(errTradeNil)
	}
	if input.Trade.ID == "" {
		return nil, errors.InvalidArgument(errTradeIDEmpty)
	}

	input.Trade.UpdatedAt = r.clock.Now().Unix()

	tradeData, err := json.Marshal(input.Trade)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal trade")
	}

	type capWrite struct {
		key  string
		data []byte
	}
	capWrites := make([]capWrite, 0, len(input.Transfers))
	for _, transfer := range input.Transfers {
		if transfer.Capture == nil {
			return nil, errors.InvalidArgument("transfer capture cannot be nil")
		}
		transfer.Capture.UpdatedAt = input.Trade.UpdatedAt
		data, err := json.Marshal(transfer.Capture)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal capture %s", transfer.Capture.ID)
		}
		capWrites = append(capWrites, capWrite{key: captures.Key(transfer.Capture.ID), data: data})
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key(input.Trade.ID), tradeData, 0)
	pipe.ZRem(ctx, expiryIndexKey, input.Trade.ID)

	for i, transfer := range input.Transfers {
		pipe.Set(ctx, capWrites[i].key, capWrites[i].data, 0)
		pipe.SRem(ctx, captures.OwnerIndexKey(transfer.FromOwnerID), transfer.Capture.ID)
		pipe.SAdd(ctx, captures.OwnerIndexKey(transfer.Capture.OwnerID), transfer.Capture.ID)
		pipe.Del(ctx, lockKey(transfer.Capture.ID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to complete trade swap")
	}

	return &CompleteSwapOutput{Trade: input.Trade}, nil
}
