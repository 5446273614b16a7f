package explore

import (
	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/rules"
)

// Encounter is one wild spawn rolled during exploration. It is not
// persisted; a catch attempt carries its fields back in.
type Encounter struct {
	SpeciesName string
	Level       int32
	Shiny       bool
	CatchRate   int32
	Biome       string
}

// ExploreInput defines the input for rolling a wild encounter
type ExploreInput struct {
	TrainerID string
	Biome     string
}

// ExploreOutput defines the output for rolling a wild encounter
type ExploreOutput struct {
	Encounter *Encounter
}

// CatchAttemptInput defines the input for attempting to catch an encounter.
// ItemModifier multiplies the species catch rate; zero means no item.
type CatchAttemptInput struct {
	TrainerID    string
	SpeciesName  string
	Level        int32
	Shiny        bool
	Biome        string
	ItemModifier float64
}

// CatchAttemptOutput defines the output for a catch attempt. Capture is nil
// when the attempt failed.
type CatchAttemptOutput struct {
	Caught        bool
	Capture       *veramon.Capture
	TokensAwarded int64
}

// AddExperienceInput defines the input for granting experience to a capture
type AddExperienceInput struct {
	CaptureID string
	Gain      int32
}

// AddExperienceOutput defines the output for granting experience
type AddExperienceOutput struct {
	Capture     *veramon.Capture
	Progression *rules.Progression
}
