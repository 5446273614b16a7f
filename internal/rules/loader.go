package rules

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
)

// Rule data file names expected under the data directory
const (
	speciesFile   = "species.json"
	movesFile     = "moves.json"
	typeChartFile = "typechart.json"
	constantsFile = "constants.json"
)

// File-format records. These exist so the JSON shape can evolve
// independently of the entity structs.

type speciesRecord struct {
	Name           string   `json:"name"`
	Types          []string `json:"types"`
	HP             int32    `json:"hp"`
	Attack         int32    `json:"attack"`
	Defense        int32    `json:"defense"`
	Speed          int32    `json:"speed"`
	Moves          []string `json:"moves"`
	Rarity         string   `json:"rarity"`
	CatchRate      int32    `json:"catch_rate"`
	Biomes         []string `json:"biomes"`
	Forms          []string `json:"forms,omitempty"`
	EvolvesInto    string   `json:"evolves_into,omitempty"`
	EvolvesAtLevel int32    `json:"evolves_at_level,omitempty"`
}

type effectRecord struct {
	Category      string `json:"category"`
	Chance        int32  `json:"chance"`
	Condition     string `json:"condition,omitempty"`
	DurationTurns int32  `json:"duration_turns,omitempty"`
	Stat          string `json:"stat,omitempty"`
	Stages        int32  `json:"stages,omitempty"`
	TargetsSelf   bool   `json:"targets_self,omitempty"`
}

type moveRecord struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Power    int32         `json:"power"`
	Accuracy int32         `json:"accuracy"`
	Priority int32         `json:"priority,omitempty"`
	MinHits  int32         `json:"min_hits,omitempty"`
	MaxHits  int32         `json:"max_hits,omitempty"`
	Effect   *effectRecord `json:"effect,omitempty"`
}

type matchupRecord struct {
	Attacking  string  `json:"attacking"`
	Defending  string  `json:"defending"`
	Multiplier float64 `json:"multiplier"`
}

type constantsRecord struct {
	CritChance         float64 `json:"crit_chance,omitempty"`
	CritMultiplier     float64 `json:"crit_multiplier,omitempty"`
	SameTypeBonus      float64 `json:"same_type_bonus,omitempty"`
	VarianceMin        float64 `json:"variance_min,omitempty"`
	ShinyOddsDenom     int32   `json:"shiny_odds_denom,omitempty"`
	CatchRewardTokens  int64   `json:"catch_reward_tokens,omitempty"`
	WinnerPrizeShare   float64 `json:"winner_prize_share,omitempty"`
	RunnerUpPrizeShare float64 `json:"runner_up_prize_share,omitempty"`
}

// LoadDirectory reads the rule data files from a directory and returns the
// parsed Data. Missing typechart.json or constants.json are tolerated;
// species.json and moves.json are required.
func LoadDirectory(dir string) (*Data, error) {
	data := &Data{}

	var moveRecords []moveRecord
	if err := readJSON(filepath.Join(dir, movesFile), &moveRecords); err != nil {
		return nil, err
	}
	for i := range moveRecords {
		move, err := moveRecords[i].toEntity()
		if err != nil {
			return nil, err
		}
		data.Moves = append(data.Moves, move)
	}

	var speciesRecords []speciesRecord
	if err := readJSON(filepath.Join(dir, speciesFile), &speciesRecords); err != nil {
		return nil, err
	}
	for i := range speciesRecords {
		data.Species = append(data.Species, speciesRecords[i].toEntity())
	}

	var matchups []matchupRecord
	if err := readJSON(filepath.Join(dir, typeChartFile), &matchups); err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	for _, m := range matchups {
		data.TypeChart = append(data.TypeChart, TypeMatchup{
			Attacking:  veramon.Type(m.Attacking),
			Defending:  veramon.Type(m.Defending),
			Multiplier: m.Multiplier,
		})
	}

	var consts constantsRecord
	if err := readJSON(filepath.Join(dir, constantsFile), &consts); err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	data.Constants = Constants{
		CritChance:         consts.CritChance,
		CritMultiplier:     consts.CritMultiplier,
		SameTypeBonus:      consts.SameTypeBonus,
		VarianceMin:        consts.VarianceMin,
		ShinyOddsDenom:     consts.ShinyOddsDenom,
		CatchRewardTokens:  consts.CatchRewardTokens,
		WinnerPrizeShare:   consts.WinnerPrizeShare,
		RunnerUpPrizeShare: consts.RunnerUpPrizeShare,
	}

	return data, nil
}

func readJSON(path string, target any) error {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from server config
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundf("rule data file %s not found", path)
		}
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to parse %s", path)
	}
	return nil
}

func (rec *speciesRecord) toEntity() *veramon.Species {
	types := make([]veramon.Type, 0, len(rec.Types))
	for _, t := range rec.Types {
		types = append(types, veramon.Type(t))
	}
	return &veramon.Species{
		Name:  rec.Name,
		Types: types,
		BaseStats: veramon.BaseStats{
			HP:      rec.HP,
			Attack:  rec.Attack,
			Defense: rec.Defense,
			Speed:   rec.Speed,
		},
		MoveNames:      rec.Moves,
		Rarity:         veramon.Rarity(rec.Rarity),
		CatchRate:      rec.CatchRate,
		Biomes:         rec.Biomes,
		Forms:          rec.Forms,
		EvolvesInto:    rec.EvolvesInto,
		EvolvesAtLevel: rec.EvolvesAtLevel,
	}
}

func (rec *moveRecord) toEntity() (*veramon.Move, error) {
	move := &veramon.Move{
		Name:     rec.Name,
		Type:     veramon.Type(rec.Type),
		Power:    rec.Power,
		Accuracy: rec.Accuracy,
		Priority: rec.Priority,
		MinHits:  rec.MinHits,
		MaxHits:  rec.MaxHits,
	}
	if rec.Effect == nil {
		return move, nil
	}

	effect := &veramon.MoveEffect{
		Category: veramon.EffectCategory(rec.Effect.Category),
		Chance:   rec.Effect.Chance,
	}
	switch effect.Category {
	case veramon.EffectCategoryStatus:
		effect.Status = &veramon.StatusEffect{
			Condition:     veramon.StatusCondition(rec.Effect.Condition),
			DurationTurns: rec.Effect.DurationTurns,
		}
	case veramon.EffectCategoryStat:
		effect.Stat = &veramon.StatEffect{
			Stat:        veramon.Stat(rec.Effect.Stat),
			Stages:      rec.Effect.Stages,
			TargetsSelf: rec.Effect.TargetsSelf,
		}
	case veramon.EffectCategoryField:
		effect.Field = &veramon.FieldEffect{
			Condition:     rec.Effect.Condition,
			DurationTurns: rec.Effect.DurationTurns,
		}
	default:
		return nil, errors.InvalidArgumentf("move %q has unknown effect category %q", rec.Name, rec.Effect.Category)
	}
	move.Effect = effect
	return move, nil
}
