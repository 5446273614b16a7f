package factions

import (
	"context"
	"encoding/json"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	redisclient "github.com/veramon/reunited-api/internal/redis"
)

const (
	factionKeyPrefix = "faction:"
	nameKeyPrefix    = "faction:name:"

	// Error messages
	errFactionNil     = "faction cannot be nil"
	errFactionIDEmpty = "faction ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis faction repository
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

// NewRedis creates a new Redis-backed faction repository
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
	return factionKeyPrefix + id
}

// names are unique case-insensitively
func nameKey(name string) string {
	return nameKeyPrefix + strings.ToLower(strings.TrimSpace(name))
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Faction == nil {
		return nil, errors.InvalidArgument(errFactionNil)
	}
	if input.Faction.ID == "" {
		return nil, errors.InvalidArgument(errFactionIDEmpty)
	}
	if strings.TrimSpace(input.Faction.Name) == "" {
		return nil, errors.InvalidArgument("faction name cannot be empty")
	}

	exists, err := r.client.Exists(ctx, key(input.Faction.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("faction with ID %s already exists", input.Faction.ID)
	}

	// Reserve the name first; SETNX loses to any concurrent claim
	reserved, err := r.client.SetNX(ctx, nameKey(input.Faction.Name), input.Faction.ID, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reserve faction name")
	}
	if !reserved {
		return nil, errors.AlreadyExistsf("faction name %q is taken", input.Faction.Name)
	}

	now := r.clock.Now().Unix()
	if input.Faction.CreatedAt == 0 {
		input.Faction.CreatedAt = now
	}
	input.Faction.UpdatedAt = now

	data, err := json.Marshal(input.Faction)
	if err != nil {
		r.client.Del(ctx, nameKey(input.Faction.Name))
		return nil, errors.Wrapf(err, "failed to marshal faction")
	}

	if err := r.client.Set(ctx, key(input.Faction.ID), data, 0).Err(); err != nil {
		r.client.Del(ctx, nameKey(input.Faction.Name))
		return nil, errors.Wrapf(err, "failed to create faction")
	}

	return &CreateOutput{Faction: input.Faction}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errFactionIDEmpty)
	}

	result, err := r.client.Get(ctx, key(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("faction with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get faction")
	}

	var faction veramon.Faction
	if err := json.Unmarshal([]byte(result), &faction); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal faction")
	}

	return &GetOutput{Faction: &faction}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Faction == nil {
		return nil, errors.InvalidArgument(errFactionNil)
	}
	if input.Faction.ID == "" {
		return nil, errors.InvalidArgument(errFactionIDEmpty)
	}

	existing, err := r.Get(ctx, GetInput{ID: input.Faction.ID})
	if err != nil {
		return nil, err
	}
	if nameKey(existing.Faction.Name) != nameKey(input.Faction.Name) {
		return nil, errors.InvalidArgument("faction names cannot change")
	}

	input.Faction.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Faction)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal faction")
	}

	if err := r.client.Set(ctx, key(input.Faction.ID), data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update faction")
	}

	return &UpdateOutput{Faction: input.Faction}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errFactionIDEmpty)
	}

	existing, err := r.Get(ctx, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key(input.ID))
	pipe.Del(ctx, nameKey(existing.Faction.Name))

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete faction")
	}

	return &DeleteOutput{}, nil
}
