package veramon

// UpgradeKind names a purchasable faction upgrade
type UpgradeKind string

// Faction upgrades
const (
	UpgradeSpawnRate UpgradeKind = "spawn_rate"
	UpgradeXPShare   UpgradeKind = "xp_share"
	UpgradeTreasury  UpgradeKind = "treasury"
)

// BuffKind names a timed faction-wide buff
type BuffKind string

// Faction buffs
const (
	BuffCatchRate BuffKind = "catch_rate"
	BuffXPGain    BuffKind = "xp_gain"
	BuffTokenGain BuffKind = "token_gain"
)

// FactionMember records one member and their rank
type FactionMember struct {
	TrainerID string
	Rank      FactionRank
	JoinedAt  int64
}

// FactionBuff is a timed faction-wide bonus purchased from the treasury
type FactionBuff struct {
	Kind      BuffKind
	Magnitude float64
	ExpiresAt int64
}

// Faction is a persistent player organization with a shared treasury.
// A trainer belongs to at most one faction; exclusivity is enforced through
// Trainer.FactionID by the faction orchestrator.
type Faction struct {
	ID          string
	Name        string
	LeaderID    string
	Members     []FactionMember
	Treasury    int64
	Upgrades    map[UpgradeKind]int32
	ActiveBuffs []FactionBuff
	CreatedAt   int64
	UpdatedAt   int64
}

// Member returns the membership record for a trainer, nil when absent
func (f *Faction) Member(trainerID string) *FactionMember {
	for i := range f.Members {
		if f.Members[i].TrainerID == trainerID {
			return &f.Members[i]
		}
	}
	return nil
}

// UpgradeLevel returns the purchased level of an upgrade, zero when unset
func (f *Faction) UpgradeLevel(kind UpgradeKind) int32 {
	if f.Upgrades == nil {
		return 0
	}
	return f.Upgrades[kind]
}

// BuffActive reports whether a buff of the given kind is active at the
// provided unix time
func (f *Faction) BuffActive(kind BuffKind, now int64) bool {
	for _, b := range f.ActiveBuffs {
		if b.Kind == kind && b.ExpiresAt > now {
			return true
		}
	}
	return false
}
