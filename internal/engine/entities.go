package engine

import "github.com/veramon/reunited-api/internal/entities/veramon"

// CombatantEntity wraps veramon.Combatant to implement the core.Entity
// interface used by turn ordering
type CombatantEntity struct {
	*veramon.Combatant
}

// GetID returns the underlying capture's ID
func (c *CombatantEntity) GetID() string {
	return c.CaptureID
}

// GetType returns the entity type
func (c *CombatantEntity) GetType() string {
	return "combatant"
}

// WrapCombatant converts a veramon.Combatant to a CombatantEntity
func WrapCombatant(combatant *veramon.Combatant) *CombatantEntity {
	return &CombatantEntity{Combatant: combatant}
}
