package battle

import (
	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// TeamSpec names one trainer's lineup for a battle
type TeamSpec struct {
	TrainerID  string
	CaptureIDs []string
}

// WildSpec describes the opposing creature of a wild encounter
type WildSpec struct {
	SpeciesName string
	Level       int32
	Shiny       bool
}

// CreateBattleInput defines the input for creating a battle. PVP battles
// name two trainers; wild battles name one trainer and a wild spawn.
type CreateBattleInput struct {
	Type       veramon.BattleType
	Challenger TeamSpec
	Opponent   *TeamSpec
	Wild       *WildSpec
}

// CreateBattleOutput defines the output for creating a battle
type CreateBattleOutput struct {
	Battle *veramon.Battle
}

// GetBattleInput defines the input for getting a battle
type GetBattleInput struct {
	ID string
}

// GetBattleOutput defines the output for getting a battle
type GetBattleOutput struct {
	Battle *veramon.Battle
}

// SubmitActionInput defines the input for submitting a turn action
type SubmitActionInput struct {
	BattleID  string
	TrainerID string
	Action    veramon.BattleAction
}

// SubmitActionOutput defines the output for submitting a turn action.
// TurnResolved is true when this submission completed the turn.
type SubmitActionOutput struct {
	Battle       *veramon.Battle
	TurnResolved bool
}

// ForfeitInput defines the input for forfeiting a battle
type ForfeitInput struct {
	BattleID  string
	TrainerID string
}

// ForfeitOutput defines the output for forfeiting a battle
type ForfeitOutput struct {
	Battle *veramon.Battle
}

// ExpireStaleInput defines the input for the stale-battle sweep
type ExpireStaleInput struct{}

// ExpireStaleOutput lists the battles the sweep force-completed
type ExpireStaleOutput struct {
	ExpiredIDs []string
}
