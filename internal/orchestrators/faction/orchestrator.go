// Package faction implements the faction orchestrator: membership with
// exclusive affiliation, a shared treasury, purchasable upgrades, and timed
// faction-wide buffs.
package faction

//go:generate mockgen -destination=mock/mock_service.go -package=factionmock github.com/veramon/reunited-api/internal/orchestrators/faction Service

import (
	"context"
	"log/slog"
	"time"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/factions"
	"github.com/veramon/reunited-api/internal/repositories/trainers"
)

// upgradeBaseCosts price each upgrade kind; level n costs base * (n+1)
var upgradeBaseCosts = map[veramon.UpgradeKind]int64{
	veramon.UpgradeSpawnRate: 500,
	veramon.UpgradeXPShare:   750,
	veramon.UpgradeTreasury:  1000,
}

type buffSpec struct {
	cost      int64
	magnitude float64
	duration  time.Duration
}

// buffSpecs price each buff kind and fix its strength and lifetime
var buffSpecs = map[veramon.BuffKind]buffSpec{
	veramon.BuffCatchRate: {cost: 250, magnitude: 1.25, duration: time.Hour},
	veramon.BuffXPGain:    {cost: 250, magnitude: 1.5, duration: time.Hour},
	veramon.BuffTokenGain: {cost: 300, magnitude: 2.0, duration: 30 * time.Minute},
}

// Service defines the interface for faction operations
type Service interface {
	// CreateFaction founds a faction with the given trainer as leader.
	// The founder must not already belong to a faction.
	CreateFaction(ctx context.Context, input *CreateFactionInput) (*CreateFactionOutput, error)

	// GetFaction retrieves a faction by ID
	GetFaction(ctx context.Context, input *GetFactionInput) (*GetFactionOutput, error)

	// Join adds a trainer as a member. Membership is exclusive: a trainer
	// already in a faction must leave it first.
	Join(ctx context.Context, input *JoinInput) (*JoinOutput, error)

	// Leave removes a trainer from the faction. The leader can only leave
	// as the last member, which disbands the faction.
	Leave(ctx context.Context, input *LeaveInput) (*LeaveOutput, error)

	// SetRank promotes or demotes a member. Leader only; the leader's own
	// rank cannot be changed.
	SetRank(ctx context.Context, input *SetRankInput) (*SetRankOutput, error)

	// Deposit moves tokens from a member's balance into the treasury
	Deposit(ctx context.Context, input *DepositInput) (*DepositOutput, error)

	// PurchaseUpgrade buys the next level of an upgrade from the treasury.
	// Officers and the leader only.
	PurchaseUpgrade(ctx context.Context, input *PurchaseUpgradeInput) (*PurchaseUpgradeOutput, error)

	// ActivateBuff buys a timed faction-wide buff from the treasury.
	// Officers and the leader only; one active buff per kind.
	ActivateBuff(ctx context.Context, input *ActivateBuffInput) (*ActivateBuffOutput, error)
}

// Config holds the dependencies for the faction orchestrator
type Config struct {
	FactionRepo factions.Repository
	TrainerRepo trainers.Repository
	IDGenerator idgen.Generator
	Clock       clock.Clock
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if cfg.FactionRepo == nil {
		vb.RequiredField("FactionRepo")
	}
	if cfg.TrainerRepo == nil {
		vb.RequiredField("TrainerRepo")
	}
	if cfg.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	factionRepo factions.Repository
	trainerRepo trainers.Repository
	idGen       idgen.Generator
	clock       clock.Clock
}

// NewOrchestrator creates a new faction orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &orchestrator{
		factionRepo: cfg.FactionRepo,
		trainerRepo: cfg.TrainerRepo,
		idGen:       cfg.IDGenerator,
		clock:       c,
	}, nil
}

var _ Service = (*orchestrator)(nil)

func (o *orchestrator) CreateFaction(ctx context.Context, input *CreateFactionInput) (*CreateFactionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Name == "" || input.LeaderID == "" {
		return nil, errors.InvalidArgument("name and leader are required")
	}

	trainer, err := o.unaffiliatedTrainer(ctx, input.LeaderID)
	if err != nil {
		return nil, err
	}

	faction := &veramon.Faction{
		ID:       o.idGen.Generate(),
		Name:     input.Name,
		LeaderID: input.LeaderID,
		Members: []veramon.FactionMember{{
			TrainerID: input.LeaderID,
			Rank:      veramon.RankLeader,
			JoinedAt:  o.clock.Now().Unix(),
		}},
	}

	created, err := o.factionRepo.Create(ctx, factions.CreateInput{Faction: faction})
	if err != nil {
		return nil, err
	}

	trainer.FactionID = created.Faction.ID
	if _, err := o.trainerRepo.Update(ctx, trainers.UpdateInput{Trainer: trainer}); err != nil {
		return nil, err
	}

	slog.Info("faction created",
		"faction_id", created.Faction.ID,
		"name", input.Name,
		"leader", input.LeaderID,
	)

	return &CreateFactionOutput{Faction: created.Faction}, nil
}

func (o *orchestrator) GetFaction(ctx context.Context, input *GetFactionInput) (*GetFactionOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument("faction ID is required")
	}

	got, err := o.factionRepo.Get(ctx, factions.GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	return &GetFactionOutput{Faction: got.Faction}, nil
}

func (o *orchestrator) Join(ctx context.Context, input *JoinInput) (*JoinOutput, error) {
	if input == nil || input.FactionID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("faction ID and trainer ID are required")
	}

	trainer, err := o.unaffiliatedTrainer(ctx, input.TrainerID)
	if err != nil {
		return nil, err
	}

	got, err := o.factionRepo.Get(ctx, factions.GetInput{ID: input.FactionID})
	if err != nil {
		return nil, err
	}
	faction := got.Faction

	faction.Members = append(faction.Members, veramon.FactionMember{
		TrainerID: input.TrainerID,
		Rank:      veramon.RankMember,
		JoinedAt:  o.clock.Now().Unix(),
	})

	updated, err := o.factionRepo.Update(ctx, factions.UpdateInput{Faction: faction})
	if err != nil {
		return nil, err
	}

	trainer.FactionID = faction.ID
	if _, err := o.trainerRepo.Update(ctx, trainers.UpdateInput{Trainer: trainer}); err != nil {
		return nil, err
	}

	return &JoinOutput{Faction: updated.Faction}, nil
}

func (o *orchestrator) Leave(ctx context.Context, input *LeaveInput) (*LeaveOutput, error) {
	if input == nil || input.FactionID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("faction ID and trainer ID are required")
	}

	faction, member, err := o.loadMember(ctx, input.FactionID, input.TrainerID)
	if err != nil {
		return nil, err
	}

	if member.Rank == veramon.RankLeader && len(faction.Members) > 1 {
		return nil, errors.FailedPrecondition("the leader cannot leave while the faction has other members")
	}

	if err := o.clearAffiliation(ctx, input.TrainerID); err != nil {
		return nil, err
	}

	// A departing leader is by now the last member, so the faction disbands
	if member.Rank == veramon.RankLeader {
		if _, err := o.factionRepo.Delete(ctx, factions.DeleteInput{ID: faction.ID}); err != nil {
			return nil, err
		}
		slog.Info("faction disbanded", "faction_id", faction.ID)
		return &LeaveOutput{Disbanded: true}, nil
	}

	for i := range faction.Members {
		if faction.Members[i].TrainerID == input.TrainerID {
			faction.Members = append(faction.Members[:i], faction.Members[i+1:]...)
			break
		}
	}

	updated, err := o.factionRepo.Update(ctx, factions.UpdateInput{Faction: faction})
	if err != nil {
		return nil, err
	}

	return &LeaveOutput{Faction: updated.Faction}, nil
}

func (o *orchestrator) SetRank(ctx context.Context, input *SetRankInput) (*SetRankOutput, error) {
	if input == nil || input.FactionID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("faction ID and trainer ID are required")
	}
	if input.Rank != veramon.RankOfficer && input.Rank != veramon.RankMember {
		return nil, errors.InvalidArgumentf("rank must be %s or %s", veramon.RankOfficer, veramon.RankMember)
	}

	got, err := o.factionRepo.Get(ctx, factions.GetInput{ID: input.FactionID})
	if err != nil {
		return nil, err
	}
	faction := got.Faction

	if faction.LeaderID != input.LeaderID {
		return nil, errors.PermissionDenied("only the leader may change ranks")
	}
	if input.TrainerID == faction.LeaderID {
		return nil, errors.InvalidArgument("the leader's rank cannot be changed")
	}

	member := faction.Member(input.TrainerID)
	if member == nil {
		return nil, errors.NotFoundf("trainer %s is not a member of faction %s", input.TrainerID, faction.ID)
	}
	member.Rank = input.Rank

	updated, err := o.factionRepo.Update(ctx, factions.UpdateInput{Faction: faction})
	if err != nil {
		return nil, err
	}

	return &SetRankOutput{Faction: updated.Faction}, nil
}

func (o *orchestrator) Deposit(ctx context.Context, input *DepositInput) (*DepositOutput, error) {
	if input == nil || input.FactionID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("faction ID and trainer ID are required")
	}
	if input.Amount <= 0 {
		return nil, errors.InvalidArgument("deposit amount must be positive")
	}

	faction, _, err := o.loadMember(ctx, input.FactionID, input.TrainerID)
	if err != nil {
		return nil, err
	}

	// AdjustTokens rejects the debit when the member cannot afford it
	if _, err := o.trainerRepo.AdjustTokens(ctx, trainers.AdjustTokensInput{
		TrainerID: input.TrainerID,
		Delta:     -input.Amount,
		Reason:    "faction deposit",
	}); err != nil {
		return nil, err
	}

	faction.Treasury += input.Amount

	updated, err := o.factionRepo.Update(ctx, factions.UpdateInput{Faction: faction})
	if err != nil {
		return nil, err
	}

	return &DepositOutput{Faction: updated.Faction}, nil
}

func (o *orchestrator) PurchaseUpgrade(ctx context.Context, input *PurchaseUpgradeInput) (*PurchaseUpgradeOutput, error) {
	if input == nil || input.FactionID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("faction ID and trainer ID are required")
	}

	base, ok := upgradeBaseCosts[input.Kind]
	if !ok {
		return nil, errors.InvalidArgumentf("unknown upgrade kind %q", input.Kind)
	}

	faction, member, err := o.loadMember(ctx, input.FactionID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if member.Rank == veramon.RankMember {
		return nil, errors.PermissionDenied("only officers and the leader may spend the treasury")
	}

	level := faction.UpgradeLevel(input.Kind)
	cost := base * int64(level+1)
	if faction.Treasury < cost {
		return nil, errors.FailedPreconditionf("upgrade costs %d, treasury holds %d", cost, faction.Treasury)
	}

	faction.Treasury -= cost
	if faction.Upgrades == nil {
		faction.Upgrades = map[veramon.UpgradeKind]int32{}
	}
	faction.Upgrades[input.Kind] = level + 1

	updated, err := o.factionRepo.Update(ctx, factions.UpdateInput{Faction: faction})
	if err != nil {
		return nil, err
	}

	slog.Info("faction upgrade purchased",
		"faction_id", faction.ID,
		"kind", input.Kind,
		"level", level+1,
		"cost", cost,
	)

	return &PurchaseUpgradeOutput{Faction: updated.Faction, Level: level + 1, Cost: cost}, nil
}

func (o *orchestrator) ActivateBuff(ctx context.Context, input *ActivateBuffInput) (*ActivateBuffOutput, error) {
	if input == nil || input.FactionID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("faction ID and trainer ID are required")
	}

	spec, ok := buffSpecs[input.Kind]
	if !ok {
		return nil, errors.InvalidArgumentf("unknown buff kind %q", input.Kind)
	}

	faction, member, err := o.loadMember(ctx, input.FactionID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if member.Rank == veramon.RankMember {
		return nil, errors.PermissionDenied("only officers and the leader may spend the treasury")
	}

	now := o.clock.Now()
	if faction.BuffActive(input.Kind, now.Unix()) {
		return nil, errors.FailedPreconditionf("a %s buff is already active", input.Kind)
	}
	if faction.Treasury < spec.cost {
		return nil, errors.FailedPreconditionf("buff costs %d, treasury holds %d", spec.cost, faction.Treasury)
	}

	faction.Treasury -= spec.cost

	// Drop spent buffs while we are here
	kept := faction.ActiveBuffs[:0]
	for _, b := range faction.ActiveBuffs {
		if b.ExpiresAt > now.Unix() {
			kept = append(kept, b)
		}
	}
	buff := veramon.FactionBuff{
		Kind:      input.Kind,
		Magnitude: spec.magnitude,
		ExpiresAt: now.Add(spec.duration).Unix(),
	}
	faction.ActiveBuffs = append(kept, buff)

	updated, err := o.factionRepo.Update(ctx, factions.UpdateInput{Faction: faction})
	if err != nil {
		return nil, err
	}

	slog.Info("faction buff activated",
		"faction_id", faction.ID,
		"kind", input.Kind,
		"expires_at", buff.ExpiresAt,
	)

	return &ActivateBuffOutput{Faction: updated.Faction, Buff: buff}, nil
}

// unaffiliatedTrainer loads a trainer and verifies they belong to no faction
func (o *orchestrator) unaffiliatedTrainer(ctx context.Context, trainerID string) (*veramon.Trainer, error) {
	got, err := o.trainerRepo.Get(ctx, trainers.GetInput{ID: trainerID})
	if err != nil {
		return nil, err
	}
	if got.Trainer.FactionID != "" {
		return nil, errors.FailedPreconditionf("trainer %s already belongs to faction %s", trainerID, got.Trainer.FactionID)
	}
	return got.Trainer, nil
}

// loadMember fetches a faction and the caller's membership record
func (o *orchestrator) loadMember(ctx context.Context, factionID, trainerID string) (*veramon.Faction, *veramon.FactionMember, error) {
	got, err := o.factionRepo.Get(ctx, factions.GetInput{ID: factionID})
	if err != nil {
		return nil, nil, err
	}

	member := got.Faction.Member(trainerID)
	if member == nil {
		return nil, nil, errors.PermissionDeniedf("trainer %s is not a member of faction %s", trainerID, factionID)
	}

	return got.Faction, member, nil
}

// clearAffiliation resets a trainer's faction pointer
func (o *orchestrator) clearAffiliation(ctx context.Context, trainerID string) error {
	got, err := o.trainerRepo.Get(ctx, trainers.GetInput{ID: trainerID})
	if err != nil {
		return err
	}
	got.Trainer.FactionID = ""
	_, err = o.trainerRepo.Update(ctx, trainers.UpdateInput{Trainer: got.Trainer})
	return err
}
