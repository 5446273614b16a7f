// Package battle implements the battle orchestrator: battle lifecycle,
// per-turn action collection, and turn resolution on top of the engine.
package battle

//go:generate mockgen -destination=mock/mock_service.go -package=battlemock github.com/veramon/reunited-api/internal/orchestrators/battle Service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/veramon/reunited-api/internal/engine"
	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/battles"
	"github.com/veramon/reunited-api/internal/repositories/captures"
	"github.com/veramon/reunited-api/internal/rules"
)

const (
	// WildTrainerID is the synthetic trainer ID the wild side of an
	// encounter battles under
	WildTrainerID = "wild"

	// DefaultTurnTimeout bounds how long a turn may wait for actions
	DefaultTurnTimeout = 5 * time.Minute

	// MaxTeamSize caps a battle lineup
	MaxTeamSize = 6

	// Priority brackets for non-attack actions. Attacks use their move's
	// own priority, which stays well below these.
	switchPriority = 6
	fleePriority   = 7

	// Paralysis skip chance, percent
	paralysisChance = 25

	// Experience awarded per level of a defeated opponent
	experiencePerLevel = 25
)

// Healing items usable during a battle turn
var itemHeals = map[string]int32{
	"potion":       20,
	"super potion": 50,
	"hyper potion": 120,
}

// Service defines the interface for battle operations
type Service interface {
	// CreateBattle validates both lineups and opens an active battle
	CreateBattle(ctx context.Context, input *CreateBattleInput) (*CreateBattleOutput, error)

	// GetBattle retrieves a battle by ID
	GetBattle(ctx context.Context, input *GetBattleInput) (*GetBattleOutput, error)

	// SubmitAction records one participant's action for the current turn
	// and resolves the turn once every living participant has acted
	SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error)

	// Forfeit concedes the battle for one participant
	Forfeit(ctx context.Context, input *ForfeitInput) (*ForfeitOutput, error)

	// ExpireStale force-completes battles whose turn deadline has passed
	ExpireStale(ctx context.Context, input *ExpireStaleInput) (*ExpireStaleOutput, error)
}

// Config holds the dependencies for the battle orchestrator
type Config struct {
	BattleRepo  battles.Repository
	CaptureRepo captures.Repository
	Registry    *rules.Registry
	Engine      engine.Engine
	Roller      dice.Roller
	IDGenerator idgen.Generator
	Clock       clock.Clock
	TurnTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if cfg.BattleRepo == nil {
		vb.RequiredField("BattleRepo")
	}
	if cfg.CaptureRepo == nil {
		vb.RequiredField("CaptureRepo")
	}
	if cfg.Registry == nil {
		vb.RequiredField("Registry")
	}
	if cfg.Engine == nil {
		vb.RequiredField("Engine")
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
	battleRepo  battles.Repository
	captureRepo captures.Repository
	registry    *rules.Registry
	engine      engine.Engine
	roller      dice.Roller
	idGen       idgen.Generator
	clock       clock.Clock
	turnTimeout time.Duration
}

// NewOrchestrator creates a new battle orchestrator with the provided dependencies
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
	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}

	return &orchestrator{
		battleRepo:  cfg.BattleRepo,
		captureRepo: cfg.CaptureRepo,
		registry:    cfg.Registry,
		engine:      cfg.Engine,
		roller:      cfg.Roller,
		idGen:       cfg.IDGenerator,
		clock:       c,
		turnTimeout: timeout,
	}, nil
}

var _ Service = (*orchestrator)(nil)

func (o *orchestrator) CreateBattle(ctx context.Context, input *CreateBattleInput) (*CreateBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	switch input.Type {
	case veramon.BattleTypePVP:
		if input.Opponent == nil {
			return nil, errors.InvalidArgument("pvp battles require an opponent team")
		}
		if input.Opponent.TrainerID == input.Challenger.TrainerID {
			return nil, errors.InvalidArgument("a trainer cannot battle themselves")
		}
	case veramon.BattleTypeWild:
		if input.Wild == nil {
			return nil, errors.InvalidArgument("wild battles require a wild spawn")
		}
	default:
		return nil, errors.InvalidArgumentf("unknown battle type %q", input.Type)
	}

	challenger, err := o.buildParticipant(ctx, input.Challenger)
	if err != nil {
		return nil, err
	}

	var opponent *veramon.Participant
	if input.Type == veramon.BattleTypePVP {
		opponent, err = o.buildParticipant(ctx, *input.Opponent)
		if err != nil {
			return nil, err
		}
	} else {
		opponent, err = o.buildWildParticipant(input.Wild)
		if err != nil {
			return nil, err
		}
	}

	now := o.clock.Now()
	battle := &veramon.Battle{
		ID:           o.idGen.Generate(),
		Type:         input.Type,
		Status:       veramon.BattleStatusActive,
		Participants: []*veramon.Participant{challenger, opponent},
		TurnNumber:   1,
		ExpiresAt:    now.Add(o.turnTimeout).Unix(),
	}
	battle.Log = append(battle.Log, veramon.LogEntry{
		Turn:    0,
		Message: fmt.Sprintf("battle started: %s vs %s", challenger.TrainerID, opponent.TrainerID),
	})

	created, err := o.battleRepo.Create(ctx, battles.CreateInput{Battle: battle})
	if err != nil {
		return nil, err
	}

	slog.Info("battle created",
		"battle_id", created.Battle.ID,
		"type", string(input.Type),
		"challenger", challenger.TrainerID,
		"opponent", opponent.TrainerID,
	)

	return &CreateBattleOutput{Battle: created.Battle}, nil
}

func (o *orchestrator) GetBattle(ctx context.Context, input *GetBattleInput) (*GetBattleOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}

	output, err := o.battleRepo.Get(ctx, battles.GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	return &GetBattleOutput{Battle: output.Battle}, nil
}

func (o *orchestrator) SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error) {
	if input == nil || input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}
	if input.TrainerID == "" {
		return nil, errors.InvalidArgument("trainer ID is required")
	}

	got, err := o.battleRepo.Get(ctx, battles.GetInput{ID: input.BattleID})
	if err != nil {
		return nil, err
	}
	battle := got.Battle

	if battle.Status != veramon.BattleStatusActive {
		return nil, errors.FailedPreconditionf("battle %s is not active", battle.ID)
	}

	participant := battle.ParticipantByTrainer(input.TrainerID)
	if participant == nil {
		return nil, errors.PermissionDeniedf("trainer %s is not in battle %s", input.TrainerID, battle.ID)
	}
	if participant.Action != nil && participant.ActionTurn == battle.TurnNumber {
		return nil, errors.FailedPreconditionf("trainer %s already acted this turn", input.TrainerID)
	}

	if err := o.validateAction(battle, participant, &input.Action); err != nil {
		return nil, err
	}

	action := input.Action
	participant.Action = &action
	participant.ActionTurn = battle.TurnNumber

	// A wild opponent has no trainer submitting for it; it always attacks
	// with its first known move.
	if battle.Type == veramon.BattleTypeWild {
		o.autoSubmitWild(battle)
	}

	resolved := false
	if o.allActed(battle) {
		if err := o.resolveTurn(battle); err != nil {
			return nil, err
		}
		resolved = true
		if battle.Status == veramon.BattleStatusCompleted {
			if err := o.awardExperience(ctx, battle); err != nil {
				return nil, err
			}
		}
	}

	updated, err := o.battleRepo.Update(ctx, battles.UpdateInput{Battle: battle})
	if err != nil {
		return nil, err
	}

	return &SubmitActionOutput{Battle: updated.Battle, TurnResolved: resolved}, nil
}

func (o *orchestrator) Forfeit(ctx context.Context, input *ForfeitInput) (*ForfeitOutput, error) {
	if input == nil || input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}

	got, err := o.battleRepo.Get(ctx, battles.GetInput{ID: input.BattleID})
	if err != nil {
		return nil, err
	}
	battle := got.Battle

	if battle.Status != veramon.BattleStatusActive {
		return nil, errors.FailedPreconditionf("battle %s is not active", battle.ID)
	}

	participant := battle.ParticipantByTrainer(input.TrainerID)
	if participant == nil {
		return nil, errors.PermissionDeniedf("trainer %s is not in battle %s", input.TrainerID, battle.ID)
	}

	o.concede(battle, participant, "forfeited")

	if err := o.awardExperience(ctx, battle); err != nil {
		return nil, err
	}

	updated, err := o.battleRepo.Update(ctx, battles.UpdateInput{Battle: battle})
	if err != nil {
		return nil, err
	}

	return &ForfeitOutput{Battle: updated.Battle}, nil
}

func (o *orchestrator) ExpireStale(ctx context.Context, input *ExpireStaleInput) (*ExpireStaleOutput, error) {
	now := o.clock.Now().Unix()

	listed, err := o.battleRepo.ListExpired(ctx, battles.ListExpiredInput{Now: now})
	if err != nil {
		return nil, err
	}

	output := &ExpireStaleOutput{}
	for _, id := range listed.IDs {
		got, err := o.battleRepo.Get(ctx, battles.GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		battle := got.Battle
		if battle.Status != veramon.BattleStatusActive {
			continue
		}

		// The participant who failed to act loses the timeout. When nobody
		// acted, the challenger does.
		loser := battle.Participants[0]
		for _, p := range battle.Participants {
			if p.Action == nil || p.ActionTurn != battle.TurnNumber {
				loser = p
				break
			}
		}
		o.concede(battle, loser, "timed out")

		if err := o.awardExperience(ctx, battle); err != nil {
			return nil, err
		}
		if _, err := o.battleRepo.Update(ctx, battles.UpdateInput{Battle: battle}); err != nil {
			return nil, err
		}

		slog.Info("battle expired", "battle_id", battle.ID, "loser", loser.TrainerID)
		output.ExpiredIDs = append(output.ExpiredIDs, battle.ID)
	}

	return output, nil
}

// buildParticipant loads and validates a trainer's lineup and snapshots it
// into combatants
func (o *orchestrator) buildParticipant(ctx context.Context, spec TeamSpec) (*veramon.Participant, error) {
	if spec.TrainerID == "" {
		return nil, errors.InvalidArgument("trainer ID is required")
	}
	if len(spec.CaptureIDs) == 0 || len(spec.CaptureIDs) > MaxTeamSize {
		return nil, errors.InvalidArgumentf("team size must be between 1 and %d", MaxTeamSize)
	}

	team := make([]*veramon.Combatant, 0, len(spec.CaptureIDs))
	for _, captureID := range spec.CaptureIDs {
		got, err := o.captureRepo.Get(ctx, captures.GetInput{ID: captureID})
		if err != nil {
			return nil, err
		}
		capture := got.Capture
		if capture.OwnerID != spec.TrainerID {
			return nil, errors.PermissionDeniedf("capture %s is not owned by trainer %s", captureID, spec.TrainerID)
		}

		combatant, err := o.snapshotCombatant(capture.ID, capture.SpeciesName, capture.Level, capture.Shiny)
		if err != nil {
			return nil, err
		}
		team = append(team, combatant)
	}

	return &veramon.Participant{TrainerID: spec.TrainerID, Team: team}, nil
}

func (o *orchestrator) buildWildParticipant(spec *WildSpec) (*veramon.Participant, error) {
	combatant, err := o.snapshotCombatant("wild_"+strings.ToLower(spec.SpeciesName), spec.SpeciesName, spec.Level, spec.Shiny)
	if err != nil {
		return nil, err
	}
	return &veramon.Participant{TrainerID: WildTrainerID, Team: []*veramon.Combatant{combatant}}, nil
}

// snapshotCombatant derives battle stats from species base stats and level
func (o *orchestrator) snapshotCombatant(captureID, speciesName string, level int32, shiny bool) (*veramon.Combatant, error) {
	species, err := o.registry.SpeciesByName(speciesName)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		level = 1
	}

	maxHP := 2*species.BaseStats.HP*level/100 + level + 10
	if maxHP < 1 {
		return nil, errors.InvalidArgumentf("species %s has no hit points at level %d", speciesName, level)
	}

	return &veramon.Combatant{
		CaptureID:   captureID,
		SpeciesName: species.Name,
		Level:       level,
		Shiny:       shiny,
		MaxHP:       maxHP,
		CurrentHP:   maxHP,
		Attack:      2*species.BaseStats.Attack*level/100 + 5,
		Defense:     2*species.BaseStats.Defense*level/100 + 5,
		Speed:       2*species.BaseStats.Speed*level/100 + 5,
		MoveNames:   species.MoveNames,
	}, nil
}

func (o *orchestrator) validateAction(battle *veramon.Battle, p *veramon.Participant, action *veramon.BattleAction) error {
	active := p.Active()
	if active == nil {
		return errors.FailedPrecondition("participant has no active combatant")
	}

	switch action.Type {
	case veramon.ActionAttack:
		if !active.Conscious() {
			return errors.FailedPrecondition("active combatant has fainted, switch first")
		}
		if !o.knowsMove(active, action.MoveName) {
			return errors.InvalidArgumentf("%s does not know %s", active.SpeciesName, action.MoveName)
		}
		if _, err := o.registry.MoveByName(action.MoveName); err != nil {
			return err
		}
	case veramon.ActionSwitch:
		if action.SwitchSlot < 0 || int(action.SwitchSlot) >= len(p.Team) {
			return errors.InvalidArgumentf("switch slot %d is out of range", action.SwitchSlot)
		}
		if action.SwitchSlot == p.ActiveSlot {
			return errors.InvalidArgument("combatant is already active")
		}
		if !p.Team[action.SwitchSlot].Conscious() {
			return errors.FailedPreconditionf("combatant in slot %d has fainted", action.SwitchSlot)
		}
	case veramon.ActionItem:
		if !active.Conscious() {
			return errors.FailedPrecondition("active combatant has fainted, switch first")
		}
		if _, ok := itemHeals[strings.ToLower(action.ItemName)]; !ok {
			return errors.InvalidArgumentf("unknown item %q", action.ItemName)
		}
	case veramon.ActionFlee:
		// always permitted; resolution decides what fleeing means
	default:
		return errors.InvalidArgumentf("unknown action type %q", action.Type)
	}

	return nil
}

func (o *orchestrator) knowsMove(c *veramon.Combatant, moveName string) bool {
	for _, name := range c.MoveNames {
		if strings.EqualFold(name, moveName) {
			return true
		}
	}
	return false
}

func (o *orchestrator) autoSubmitWild(battle *veramon.Battle) {
	wild := battle.ParticipantByTrainer(WildTrainerID)
	if wild == nil || (wild.Action != nil && wild.ActionTurn == battle.TurnNumber) {
		return
	}
	active := wild.Active()
	if active == nil || !active.Conscious() || len(active.MoveNames) == 0 {
		return
	}
	wild.Action = &veramon.BattleAction{Type: veramon.ActionAttack, MoveName: active.MoveNames[0]}
	wild.ActionTurn = battle.TurnNumber
}

func (o *orchestrator) allActed(battle *veramon.Battle) bool {
	for _, p := range battle.Participants {
		if p.Defeated() {
			continue
		}
		if p.Action == nil || p.ActionTurn != battle.TurnNumber {
			return false
		}
	}
	return true
}

func (o *orchestrator) actionPriority(p *veramon.Participant) (int32, error) {
	switch p.Action.Type {
	case veramon.ActionAttack:
		move, err := o.registry.MoveByName(p.Action.MoveName)
		if err != nil {
			return 0, err
		}
		return move.Priority, nil
	case veramon.ActionSwitch, veramon.ActionItem:
		return switchPriority, nil
	case veramon.ActionFlee:
		return fleePriority, nil
	default:
		return 0, errors.InvalidArgumentf("unknown action type %q", p.Action.Type)
	}
}

// resolveTurn executes every submitted action in initiative order, applies
// end-of-turn status damage, and advances the turn counter
func (o *orchestrator) resolveTurn(battle *veramon.Battle) error {
	entries := make([]engine.InitiativeEntry, 0, len(battle.Participants))
	for slot, p := range battle.Participants {
		if p.Defeated() || p.Action == nil {
			continue
		}
		priority, err := o.actionPriority(p)
		if err != nil {
			return err
		}
		active := p.Active()
		entries = append(entries, engine.InitiativeEntry{
			Entity:   engine.WrapCombatant(active),
			Priority: priority,
			Speed:    o.engine.EffectiveStat(active.Speed, active.Stage(veramon.StatSpeed)),
			Slot:     int32(slot),
		})
	}

	for _, entry := range o.engine.TurnOrder(entries) {
		if battle.Status != veramon.BattleStatusActive {
			break
		}
		actor := battle.Participants[entry.Slot]
		if actor.Defeated() || actor.Action == nil {
			continue
		}
		active := actor.Active()
		if active == nil || (!active.Conscious() && actor.Action.Type != veramon.ActionSwitch) {
			continue
		}
		if err := o.executeAction(battle, actor); err != nil {
			return err
		}
		o.checkDefeat(battle)
	}

	if battle.Status == veramon.BattleStatusActive {
		o.applyEndOfTurnStatus(battle)
		o.checkDefeat(battle)
	}

	for _, p := range battle.Participants {
		p.Action = nil
	}
	if battle.Status == veramon.BattleStatusActive {
		battle.TurnNumber++
		battle.ExpiresAt = o.clock.Now().Add(o.turnTimeout).Unix()
	}

	return nil
}

func (o *orchestrator) executeAction(battle *veramon.Battle, actor *veramon.Participant) error {
	opponent := o.opponentOf(battle, actor)

	switch actor.Action.Type {
	case veramon.ActionFlee:
		if battle.Type == veramon.BattleTypeWild && actor.TrainerID != WildTrainerID {
			actor.Fled = true
			battle.Status = veramon.BattleStatusCompleted
			o.log(battle, "%s fled from the wild %s", actor.TrainerID, opponent.Active().SpeciesName)
		} else {
			o.concede(battle, actor, "fled")
		}
	case veramon.ActionSwitch:
		actor.ActiveSlot = actor.Action.SwitchSlot
		o.log(battle, "%s sent out %s", actor.TrainerID, actor.Active().SpeciesName)
	case veramon.ActionItem:
		active := actor.Active()
		heal := itemHeals[strings.ToLower(actor.Action.ItemName)]
		active.CurrentHP += heal
		if active.CurrentHP > active.MaxHP {
			active.CurrentHP = active.MaxHP
		}
		o.log(battle, "%s used %s on %s", actor.TrainerID, actor.Action.ItemName, active.SpeciesName)
	case veramon.ActionAttack:
		return o.executeAttack(battle, actor, opponent)
	}

	return nil
}

func (o *orchestrator) executeAttack(battle *veramon.Battle, actor, opponent *veramon.Participant) error {
	attacker := actor.Active()
	defender := opponent.Active()
	if defender == nil || !defender.Conscious() {
		return nil
	}

	proceed, err := o.checkActingStatus(battle, attacker)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	move, err := o.registry.MoveByName(actor.Action.MoveName)
	if err != nil {
		return err
	}

	// Accuracy is checked once per move use; multi-hit moves either land
	// every rolled hit or miss entirely.
	hit, err := o.engine.RollAccuracy(move)
	if err != nil {
		return err
	}
	if !hit {
		o.log(battle, "%s's %s missed", attacker.SpeciesName, move.Name)
		return nil
	}

	if !move.IsStatus() {
		hits, err := o.engine.RollHitCount(move)
		if err != nil {
			return err
		}
		landed := int32(0)
		for i := int32(0); i < hits && defender.Conscious(); i++ {
			result, err := o.engine.RollDamage(&engine.DamageInput{
				Attacker: attacker,
				Defender: defender,
				Move:     move,
			})
			if err != nil {
				return err
			}
			defender.CurrentHP -= result.Damage
			if defender.CurrentHP < 0 {
				defender.CurrentHP = 0
			}
			landed++

			msg := fmt.Sprintf("%s's %s hit %s for %d", attacker.SpeciesName, move.Name, defender.SpeciesName, result.Damage)
			if result.Critical {
				msg += " (critical)"
			}
			o.log(battle, "%s", msg)
		}
		if hits > 1 {
			o.log(battle, "%s's %s landed %d hits", attacker.SpeciesName, move.Name, landed)
		}
	}

	if defender.Conscious() && move.Effect != nil {
		applied, err := o.engine.RollEffectChance(move.Effect)
		if err != nil {
			return err
		}
		if applied {
			o.applyEffect(battle, attacker, defender, move)
		}
	}

	if !defender.Conscious() {
		o.log(battle, "%s fainted", defender.SpeciesName)
		o.autoAdvance(battle, opponent)
	}

	return nil
}

// checkActingStatus applies pre-action status gating. Returns false when
// the attacker loses its action this turn.
func (o *orchestrator) checkActingStatus(battle *veramon.Battle, attacker *veramon.Combatant) (bool, error) {
	switch attacker.Status {
	case veramon.StatusSleep, veramon.StatusFreeze:
		if attacker.StatusTurnsLeft > 0 {
			attacker.StatusTurnsLeft--
			o.log(battle, "%s cannot move (%s)", attacker.SpeciesName, attacker.Status)
			return false, nil
		}
		o.log(battle, "%s recovered from %s", attacker.SpeciesName, attacker.Status)
		attacker.Status = veramon.StatusNone
		return true, nil
	case veramon.StatusParalyze:
		roll, err := o.roller.Roll(100)
		if err != nil {
			return false, errors.Wrap(err, "failed to roll paralysis")
		}
		if int32(roll) <= paralysisChance {
			o.log(battle, "%s is paralyzed and cannot move", attacker.SpeciesName)
			return false, nil
		}
	default:
	}
	return true, nil
}

func (o *orchestrator) applyEffect(battle *veramon.Battle, attacker, defender *veramon.Combatant, move *veramon.Move) {
	effect := move.Effect
	switch effect.Category {
	case veramon.EffectCategoryStatus:
		if defender.Status != veramon.StatusNone {
			return
		}
		defender.Status = effect.Status.Condition
		defender.StatusTurnsLeft = effect.Status.DurationTurns
		o.log(battle, "%s was afflicted with %s", defender.SpeciesName, effect.Status.Condition)
	case veramon.EffectCategoryStat:
		target := defender
		if effect.Stat.TargetsSelf {
			target = attacker
		}
		target.SetStage(effect.Stat.Stat, target.Stage(effect.Stat.Stat)+effect.Stat.Stages)
		direction := "rose"
		if effect.Stat.Stages < 0 {
			direction = "fell"
		}
		o.log(battle, "%s's %s %s", target.SpeciesName, effect.Stat.Stat, direction)
	case veramon.EffectCategoryField:
		o.log(battle, "%s changed the field: %s", attacker.SpeciesName, effect.Field.Condition)
	}
}

// applyEndOfTurnStatus deals burn and poison chip damage and expires timed
// conditions
func (o *orchestrator) applyEndOfTurnStatus(battle *veramon.Battle) {
	for _, p := range battle.Participants {
		active := p.Active()
		if active == nil || !active.Conscious() {
			continue
		}
		switch active.Status {
		case veramon.StatusBurn, veramon.StatusPoison:
			chip := active.MaxHP / 8
			if chip < 1 {
				chip = 1
			}
			active.CurrentHP -= chip
			if active.CurrentHP < 0 {
				active.CurrentHP = 0
			}
			o.log(battle, "%s took %d damage from %s", active.SpeciesName, chip, active.Status)
			if active.StatusTurnsLeft > 0 {
				active.StatusTurnsLeft--
				if active.StatusTurnsLeft == 0 {
					o.log(battle, "%s recovered from %s", active.SpeciesName, active.Status)
					active.Status = veramon.StatusNone
				}
			}
			if !active.Conscious() {
				o.log(battle, "%s fainted", active.SpeciesName)
				o.autoAdvance(battle, p)
			}
		default:
		}
	}
}

// autoAdvance moves a participant's active slot to the first conscious
// combatant after a faint
func (o *orchestrator) autoAdvance(battle *veramon.Battle, p *veramon.Participant) {
	if p.Active() != nil && p.Active().Conscious() {
		return
	}
	for slot, c := range p.Team {
		if c.Conscious() {
			p.ActiveSlot = int32(slot)
			o.log(battle, "%s sent out %s", p.TrainerID, c.SpeciesName)
			return
		}
	}
}

func (o *orchestrator) checkDefeat(battle *veramon.Battle) {
	if battle.Status != veramon.BattleStatusActive {
		return
	}
	for _, p := range battle.Participants {
		if p.Defeated() {
			battle.Status = veramon.BattleStatusCompleted
			winner := o.opponentOf(battle, p)
			if winner.TrainerID != WildTrainerID {
				battle.WinnerID = winner.TrainerID
			}
			o.log(battle, "%s has no combatants left", p.TrainerID)
			return
		}
	}
}

// concede ends the battle against one participant
func (o *orchestrator) concede(battle *veramon.Battle, loser *veramon.Participant, reason string) {
	loser.Fled = true
	battle.Status = veramon.BattleStatusCompleted
	winner := o.opponentOf(battle, loser)
	if winner.TrainerID != WildTrainerID {
		battle.WinnerID = winner.TrainerID
	}
	o.log(battle, "%s %s", loser.TrainerID, reason)
}

func (o *orchestrator) opponentOf(battle *veramon.Battle, p *veramon.Participant) *veramon.Participant {
	for _, other := range battle.Participants {
		if other.TrainerID != p.TrainerID {
			return other
		}
	}
	return nil
}

// awardExperience grants the winning team experience for every opposing
// combatant and persists level and evolution changes to the captures
func (o *orchestrator) awardExperience(ctx context.Context, battle *veramon.Battle) error {
	if battle.Status != veramon.BattleStatusCompleted || battle.WinnerID == "" {
		return nil
	}
	winner := battle.ParticipantByTrainer(battle.WinnerID)
	if winner == nil {
		return nil
	}
	loser := o.opponentOf(battle, winner)
	if loser == nil {
		return nil
	}

	var gain int32
	for _, c := range loser.Team {
		gain += experiencePerLevel * c.Level
	}
	if gain == 0 {
		return nil
	}

	for _, combatant := range winner.Team {
		got, err := o.captureRepo.Get(ctx, captures.GetInput{ID: combatant.CaptureID})
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return err
		}
		capture := got.Capture

		progression, err := o.registry.ApplyExperience(capture, gain)
		if err != nil {
			return err
		}
		if _, err := o.captureRepo.Update(ctx, captures.UpdateInput{Capture: capture}); err != nil {
			return err
		}

		o.log(battle, "%s gained %d experience", progression.FromSpecies, gain)
		if progression.Evolved {
			o.log(battle, "%s evolved into %s", progression.FromSpecies, capture.SpeciesName)
		}
	}

	return nil
}

func (o *orchestrator) log(battle *veramon.Battle, format string, args ...any) {
	battle.Log = append(battle.Log, veramon.LogEntry{
		Turn:    battle.TurnNumber,
		Message: fmt.Sprintf(format, args...),
	})
}
