// Package explore implements the exploration orchestrator: rolling wild
// encounters from biome spawn tables, catch attempts, and experience grants.
package explore

//go:generate mockgen -destination=mock/mock_service.go -package=exploremock github.com/veramon/reunited-api/internal/orchestrators/explore Service

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/captures"
	"github.com/veramon/reunited-api/internal/repositories/trainers"
	"github.com/veramon/reunited-api/internal/rules"
)

// WildLevelMax caps the level rolled for a wild encounter
const WildLevelMax = 30

// Service defines the interface for exploration operations
type Service interface {
	// Explore rolls a wild encounter from the biome's rarity-weighted
	// spawn table. Shiny encounters land at 1-in-N odds.
	Explore(ctx context.Context, input *ExploreInput) (*ExploreOutput, error)

	// CatchAttempt rolls against the species catch rate. Success creates
	// a capture owned by the trainer and awards catch-reward tokens.
	CatchAttempt(ctx context.Context, input *CatchAttemptInput) (*CatchAttemptOutput, error)

	// AddExperience grants experience to a capture, recomputing its level
	// and applying evolution at the species threshold
	AddExperience(ctx context.Context, input *AddExperienceInput) (*AddExperienceOutput, error)
}

// Config holds the dependencies for the explore orchestrator
type Config struct {
	CaptureRepo captures.Repository
	TrainerRepo trainers.Repository
	Registry    *rules.Registry
	Roller      dice.Roller
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if cfg.CaptureRepo == nil {
		vb.RequiredField("CaptureRepo")
	}
	if cfg.TrainerRepo == nil {
		vb.RequiredField("TrainerRepo")
	}
	if cfg.Registry == nil {
		vb.RequiredField("Registry")
	}
	if cfg.Roller == nil {
		vb.RequiredField("Roller")
	}
	if cfg.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	captureRepo captures.Repository
	trainerRepo trainers.Repository
	registry    *rules.Registry
	roller      dice.Roller
	idGen       idgen.Generator
}

// NewOrchestrator creates a new explore orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		captureRepo: cfg.CaptureRepo,
		trainerRepo: cfg.TrainerRepo,
		registry:    cfg.Registry,
		roller:      cfg.Roller,
		idGen:       cfg.IDGenerator,
	}, nil
}

var _ Service = (*orchestrator)(nil)

func (o *orchestrator) Explore(ctx context.Context, input *ExploreInput) (*ExploreOutput, error) {
	if input == nil || input.TrainerID == "" || input.Biome == "" {
		return nil, errors.InvalidArgument("trainer ID and biome are required")
	}

	if _, err := o.trainerRepo.Get(ctx, trainers.GetInput{ID: input.TrainerID}); err != nil {
		return nil, err
	}

	table := o.registry.SpawnTable(input.Biome)
	if len(table) == 0 {
		return nil, errors.NotFoundf("nothing spawns in biome %q", input.Biome)
	}

	species, err := o.rollSpawn(table)
	if err != nil {
		return nil, err
	}

	level, err := o.roller.Roll(WildLevelMax)
	if err != nil {
		return nil, errors.Wrap(err, "rolling encounter level")
	}

	shinyRoll, err := o.roller.Roll(int(o.registry.Constants().ShinyOddsDenom))
	if err != nil {
		return nil, errors.Wrap(err, "rolling shiny odds")
	}
	shiny := shinyRoll == 1

	encounter := &Encounter{
		SpeciesName: species.Name,
		Level:       int32(level), // #nosec G115 -- level die is WildLevelMax-sided
		Shiny:       shiny,
		CatchRate:   species.CatchRate,
		Biome:       input.Biome,
	}

	slog.Debug("wild encounter",
		"trainer_id", input.TrainerID,
		"biome", input.Biome,
		"species", species.Name,
		"level", level,
		"shiny", shiny,
	)

	return &ExploreOutput{Encounter: encounter}, nil
}

func (o *orchestrator) CatchAttempt(ctx context.Context, input *CatchAttemptInput) (*CatchAttemptOutput, error) {
	if input == nil || input.TrainerID == "" || input.SpeciesName == "" {
		return nil, errors.InvalidArgument("trainer ID and species are required")
	}

	species, err := o.registry.SpeciesByName(input.SpeciesName)
	if err != nil {
		return nil, err
	}

	modifier := input.ItemModifier
	if modifier <= 0 {
		modifier = 1.0
	}
	chance := int(float64(species.CatchRate) * modifier)
	if chance < 1 {
		chance = 1
	}
	if chance > 100 {
		chance = 100
	}

	roll, err := o.roller.Roll(100)
	if err != nil {
		return nil, errors.Wrap(err, "rolling catch attempt")
	}
	if roll > chance {
		return &CatchAttemptOutput{Caught: false}, nil
	}

	level := input.Level
	if level < 1 {
		level = 1
	}
	capture := &veramon.Capture{
		ID:          o.idGen.Generate(),
		OwnerID:     input.TrainerID,
		SpeciesName: species.Name,
		Level:       level,
		Experience:  rules.ExperienceForLevel(level),
		Shiny:       input.Shiny,
		Biome:       input.Biome,
	}

	created, err := o.captureRepo.Create(ctx, captures.CreateInput{Capture: capture})
	if err != nil {
		return nil, err
	}

	reward := o.registry.Constants().CatchRewardTokens
	if _, err := o.trainerRepo.AdjustTokens(ctx, trainers.AdjustTokensInput{
		TrainerID: input.TrainerID,
		Delta:     reward,
		Reason:    "catch reward",
	}); err != nil {
		return nil, err
	}

	slog.Info("capture caught",
		"trainer_id", input.TrainerID,
		"capture_id", created.Capture.ID,
		"species", species.Name,
		"level", level,
		"shiny", input.Shiny,
	)

	return &CatchAttemptOutput{
		Caught:        true,
		Capture:       created.Capture,
		TokensAwarded: reward,
	}, nil
}

func (o *orchestrator) AddExperience(ctx context.Context, input *AddExperienceInput) (*AddExperienceOutput, error) {
	if input == nil || input.CaptureID == "" {
		return nil, errors.InvalidArgument("capture ID is required")
	}
	if input.Gain < 0 {
		return nil, errors.InvalidArgument("experience gain cannot be negative")
	}

	got, err := o.captureRepo.Get(ctx, captures.GetInput{ID: input.CaptureID})
	if err != nil {
		return nil, err
	}
	capture := got.Capture

	progression, err := o.registry.ApplyExperience(capture, input.Gain)
	if err != nil {
		return nil, err
	}

	updated, err := o.captureRepo.Update(ctx, captures.UpdateInput{Capture: capture})
	if err != nil {
		return nil, err
	}

	if progression.Evolved {
		slog.Info("capture evolved",
			"capture_id", capture.ID,
			"from", progression.FromSpecies,
			"to", capture.SpeciesName,
		)
	}

	return &AddExperienceOutput{Capture: updated.Capture, Progression: progression}, nil
}

// rollSpawn picks a weighted entry from a spawn table
func (o *orchestrator) rollSpawn(table []rules.SpawnEntry) (*veramon.Species, error) {
	total := 0
	for _, entry := range table {
		total += int(entry.Weight)
	}

	roll, err := o.roller.Roll(total)
	if err != nil {
		return nil, errors.Wrap(err, "rolling spawn table")
	}

	for _, entry := range table {
		roll -= int(entry.Weight)
		if roll <= 0 {
			return entry.Species, nil
		}
	}
	return table[len(table)-1].Species, nil
}
