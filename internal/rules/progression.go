package rules

import (
	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
)

// Progression is the result of applying experience to a capture
type Progression struct {
	LevelsGained int32
	Evolved      bool
	FromSpecies  string
}

// ApplyExperience adds experience to a capture, recomputes its level from
// the curve, and evolves it when the new level reaches the species
// threshold. Levels never decrease. Evolution chains are followed, one step
// per threshold crossed.
func (r *Registry) ApplyExperience(capture *veramon.Capture, gain int32) (*Progression, error) {
	if capture == nil {
		return nil, errors.InvalidArgument("capture cannot be nil")
	}
	if gain < 0 {
		gain = 0
	}

	progression := &Progression{FromSpecies: capture.SpeciesName}

	capture.Experience += gain
	newLevel := LevelForExperience(capture.Experience)
	if newLevel > capture.Level {
		progression.LevelsGained = newLevel - capture.Level
		capture.Level = newLevel
	}

	for {
		species, err := r.SpeciesByName(capture.SpeciesName)
		if err != nil {
			return nil, err
		}
		if species.EvolvesInto == "" || species.EvolvesAtLevel == 0 || capture.Level < species.EvolvesAtLevel {
			break
		}
		if _, err := r.SpeciesByName(species.EvolvesInto); err != nil {
			return nil, err
		}
		capture.SpeciesName = species.EvolvesInto
		progression.Evolved = true
	}

	return progression, nil
}
