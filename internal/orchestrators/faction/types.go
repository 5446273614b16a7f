package faction

import (
	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// CreateFactionInput defines the input for founding a faction
type CreateFactionInput struct {
	Name     string
	LeaderID string
}

// CreateFactionOutput defines the output for founding a faction
type CreateFactionOutput struct {
	Faction *veramon.Faction
}

// GetFactionInput defines the input for getting a faction
type GetFactionInput struct {
	ID string
}

// GetFactionOutput defines the output for getting a faction
type GetFactionOutput struct {
	Faction *veramon.Faction
}

// JoinInput defines the input for joining a faction
type JoinInput struct {
	FactionID string
	TrainerID string
}

// JoinOutput defines the output for joining a faction
type JoinOutput struct {
	Faction *veramon.Faction
}

// LeaveInput defines the input for leaving a faction
type LeaveInput struct {
	FactionID string
	TrainerID string
}

// LeaveOutput defines the output for leaving a faction. Disbanded is true
// when the departing leader was the last member and the faction was deleted.
type LeaveOutput struct {
	Faction   *veramon.Faction
	Disbanded bool
}

// SetRankInput defines the input for changing a member's rank
type SetRankInput struct {
	FactionID string
	LeaderID  string
	TrainerID string
	Rank      veramon.FactionRank
}

// SetRankOutput defines the output for changing a member's rank
type SetRankOutput struct {
	Faction *veramon.Faction
}

// DepositInput defines the input for depositing tokens into the treasury
type DepositInput struct {
	FactionID string
	TrainerID string
	Amount    int64
}

// DepositOutput defines the output for a treasury deposit
type DepositOutput struct {
	Faction *veramon.Faction
}

// PurchaseUpgradeInput defines the input for buying a faction upgrade
type PurchaseUpgradeInput struct {
	FactionID string
	TrainerID string
	Kind      veramon.UpgradeKind
}

// PurchaseUpgradeOutput defines the output for buying a faction upgrade
type PurchaseUpgradeOutput struct {
	Faction *veramon.Faction
	Level   int32
	Cost    int64
}

// ActivateBuffInput defines the input for activating a timed buff
type ActivateBuffInput struct {
	FactionID string
	TrainerID string
	Kind      veramon.BuffKind
}

// ActivateBuffOutput defines the output for activating a timed buff
type ActivateBuffOutput struct {
	Faction *veramon.Faction
	Buff    veramon.FactionBuff
}
