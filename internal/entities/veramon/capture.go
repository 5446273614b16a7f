// Package veramon implements the Veramon Reunited entities
package veramon

// Capture represents a trainer-owned instance of a species.
// NOTE: This is a data-only struct. Level math, evolution checks, and battle
// stat derivation are done by the engine and rules registry, not here.
type Capture struct {
	ID          string
	OwnerID     string
	SpeciesName string
	Level       int32
	Experience  int32
	Shiny       bool
	Nickname    string
	ActiveForm  string
	Biome       string
	CaughtAt    int64
	UpdatedAt   int64
}

// DisplayName returns the nickname when set, otherwise the species name
func (c *Capture) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.SpeciesName
}

// Trainer represents a player account with a token balance
type Trainer struct {
	ID        string
	Name      string
	Tokens    int64
	FactionID string
	CreatedAt int64
	UpdatedAt int64
}
