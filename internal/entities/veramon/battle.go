package veramon

// StageMin and StageMax bound stat stages during battle. The multiplier for
// a staged stat is (2+s)/2 for s >= 0 and 2/(2-s) for s < 0.
const (
	StageMin int32 = -6
	StageMax int32 = 6
)

// Combatant is a battle-local snapshot of a capture. Mutations during a
// battle (HP loss, stages, status) never touch the underlying capture.
type Combatant struct {
	CaptureID   string
	SpeciesName string
	Level       int32
	Shiny       bool
	MaxHP       int32
	CurrentHP   int32
	Attack      int32
	Defense     int32
	Speed       int32
	MoveNames   []string

	Stages          map[Stat]int32
	Status          StatusCondition
	StatusTurnsLeft int32
}

// Conscious reports whether the combatant can still fight
func (c *Combatant) Conscious() bool {
	return c.CurrentHP > 0
}

// Stage returns the current stage for a stat, zero when unset
func (c *Combatant) Stage(stat Stat) int32 {
	if c.Stages == nil {
		return 0
	}
	return c.Stages[stat]
}

// SetStage records a stage value, clamped to the stage bounds
func (c *Combatant) SetStage(stat Stat, stage int32) {
	if stage < StageMin {
		stage = StageMin
	}
	if stage > StageMax {
		stage = StageMax
	}
	if c.Stages == nil {
		c.Stages = make(map[Stat]int32)
	}
	c.Stages[stat] = stage
}

// BattleAction is one participant's submitted action for the current turn
type BattleAction struct {
	Type       ActionType
	MoveName   string // attack
	SwitchSlot int32  // switch
	ItemName   string // item
}

// Participant is one side of a battle
type Participant struct {
	TrainerID   string
	Team        []*Combatant
	ActiveSlot  int32
	Fled        bool
	Action      *BattleAction
	ActionTurn  int32 // turn number the pending action was submitted for
}

// Active returns the participant's active combatant, nil when the slot is
// out of range
func (p *Participant) Active() *Combatant {
	if p.ActiveSlot < 0 || int(p.ActiveSlot) >= len(p.Team) {
		return nil
	}
	return p.Team[p.ActiveSlot]
}

// Defeated reports whether the participant has no conscious combatants left
func (p *Participant) Defeated() bool {
	if p.Fled {
		return true
	}
	for _, c := range p.Team {
		if c.Conscious() {
			return false
		}
	}
	return true
}

// LogEntry records one resolved event within a turn
type LogEntry struct {
	Turn    int32
	Message string
}

// Battle holds the full state of one battle session
type Battle struct {
	ID           string
	Type         BattleType
	Status       BattleStatus
	Participants []*Participant
	TurnNumber   int32
	WinnerID     string
	Log          []LogEntry
	CreatedAt    int64
	UpdatedAt    int64
	ExpiresAt    int64
}

// ParticipantByTrainer returns the participant for a trainer, nil when the
// trainer is not in the battle
func (b *Battle) ParticipantByTrainer(trainerID string) *Participant {
	for _, p := range b.Participants {
		if p.TrainerID == trainerID {
			return p
		}
	}
	return nil
}
