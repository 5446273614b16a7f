package veramon

// Type is an elemental type assigned to species and moves
type Type string

// Elemental types
const (
	TypeNormal   Type = "normal"
	TypeFire     Type = "fire"
	TypeWater    Type = "water"
	TypeGrass    Type = "grass"
	TypeElectric Type = "electric"
	TypeIce      Type = "ice"
	TypeRock     Type = "rock"
	TypeWind     Type = "wind"
	TypeShadow   Type = "shadow"
	TypeLight    Type = "light"
)

// Stat identifies a battle stat that can be staged up or down
type Stat string

// Battle stats
const (
	StatHP      Stat = "hp"
	StatAttack  Stat = "attack"
	StatDefense Stat = "defense"
	StatSpeed   Stat = "speed"
)

// StatusCondition is a persistent condition applied to a combatant
type StatusCondition string

// Status conditions
const (
	StatusNone     StatusCondition = ""
	StatusBurn     StatusCondition = "burn"
	StatusPoison   StatusCondition = "poison"
	StatusParalyze StatusCondition = "paralyze"
	StatusSleep    StatusCondition = "sleep"
	StatusFreeze   StatusCondition = "freeze"
)

// Rarity buckets drive spawn weighting during exploration
type Rarity string

// Rarity buckets
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

// BattleStatus tracks the lifecycle of a battle
type BattleStatus string

// Battle lifecycle states
const (
	BattleStatusPending   BattleStatus = "pending"
	BattleStatusActive    BattleStatus = "active"
	BattleStatusCompleted BattleStatus = "completed"
)

// BattleType distinguishes trainer battles from wild encounters
type BattleType string

// Battle types
const (
	BattleTypePVP  BattleType = "pvp"
	BattleTypeWild BattleType = "wild"
)

// ActionType is a participant's chosen action for a turn
type ActionType string

// Turn actions
const (
	ActionAttack ActionType = "attack"
	ActionSwitch ActionType = "switch"
	ActionItem   ActionType = "item"
	ActionFlee   ActionType = "flee"
)

// TradeStatus tracks the lifecycle of a trade
type TradeStatus string

// Trade lifecycle states
const (
	TradeStatusPending     TradeStatus = "pending"
	TradeStatusNegotiating TradeStatus = "negotiating"
	TradeStatusCompleted   TradeStatus = "completed"
	TradeStatusCancelled   TradeStatus = "cancelled"
	TradeStatusDeclined    TradeStatus = "declined"
)

// TournamentStatus tracks the lifecycle of a tournament
type TournamentStatus string

// Tournament lifecycle states
const (
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusInProgress   TournamentStatus = "in_progress"
	TournamentStatusCompleted    TournamentStatus = "completed"
	TournamentStatusCancelled    TournamentStatus = "cancelled"
)

// MatchStatus tracks a single bracket match
type MatchStatus string

// Match states
const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

// FactionRank is a member's rank within a faction
type FactionRank string

// Faction ranks
const (
	RankLeader  FactionRank = "leader"
	RankOfficer FactionRank = "officer"
	RankMember  FactionRank = "member"
)
