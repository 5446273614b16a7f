package captures

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	redisclient "github.com/veramon/reunited-api/internal/redis"
)

const (
	captureKeyPrefix = "capture:"
	ownerIndexPrefix = "capture:owner:"

	// Error messages
	errCaptureNil     = "capture cannot be nil"
	errCaptureIDEmpty = "capture ID cannot be empty"
	errOwnerIDEmpty   = "owner ID cannot be empty"
)

// Key returns the storage key for a capture ID. Exported so the trades
// repository can include capture writes in its swap transaction.
func Key(id string) string {
	return captureKeyPrefix + id
}

// OwnerIndexKey returns the owner index key for a trainer ID
func OwnerIndexKey(ownerID string) string {
	return ownerIndexPrefix + ownerID
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis capture repository
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

// NewRedis creates a new Redis-backed capture repository
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

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Capture == nil {
		return nil, errors.InvalidArgument(errCaptureNil)
	}
	if input.Capture.ID == "" {
		return nil, errors.InvalidArgument(errCaptureIDEmpty)
	}
	if input.Capture.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerIDEmpty)
	}

	key := Key(input.Capture.ID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("capture with ID %s already exists", input.Capture.ID)
	}

	now := r.clock.Now().Unix()
	if input.Capture.CaughtAt == 0 {
		input.Capture.CaughtAt = now
	}
	input.Capture.UpdatedAt = now

	data, err := json.Marshal(input.Capture)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal capture")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, OwnerIndexKey(input.Capture.OwnerID), input.Capture.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create capture")
	}

	return &CreateOutput{Capture: input.Capture}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCaptureIDEmpty)
	}

	result, err := r.client.Get(ctx, Key(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("capture with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get capture")
	}

	var capture veramon.Capture
	if err := json.Unmarshal([]byte(result), &capture); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal capture")
	}

	return &GetOutput{Capture: &capture}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Capture == nil {
		return nil, errors.InvalidArgument(errCaptureNil)
	}
	if input.Capture.ID == "" {
		return nil, errors.InvalidArgument(errCaptureIDEmpty)
	}

	key := Key(input.Capture.ID)

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("capture with ID %s not found", input.Capture.ID)
		}
		return nil, errors.Wrapf(err, "failed to get capture")
	}

	var existing veramon.Capture
	if err := json.Unmarshal([]byte(result), &existing); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal existing capture")
	}

	input.Capture.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Capture)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal capture")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)

	if existing.OwnerID != input.Capture.OwnerID {
		pipe.SRem(ctx, OwnerIndexKey(existing.OwnerID), input.Capture.ID)
		pipe.SAdd(ctx, OwnerIndexKey(input.Capture.OwnerID), input.Capture.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update capture")
	}

	return &UpdateOutput{Capture: input.Capture}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCaptureIDEmpty)
	}

	key := Key(input.ID)

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("capture with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get capture")
	}

	var existing veramon.Capture
	if err := json.Unmarshal([]byte(result), &existing); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal capture")
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, OwnerIndexKey(existing.OwnerID), input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete capture")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error) {
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerIDEmpty)
	}

	ids, err := r.client.SMembers(ctx, OwnerIndexKey(input.OwnerID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list captures for owner %s", input.OwnerID)
	}

	captures := make([]*veramon.Capture, 0, len(ids))
	for _, id := range ids {
		out, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				// Stale index entry, skip it
				continue
			}
			return nil, err
		}
		captures = append(captures, out.Capture)
	}

	return &ListByOwnerOutput{Captures: captures}, nil
}
