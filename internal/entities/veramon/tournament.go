package veramon

// Match is one bracket match. Rounds and match numbers are zero-based;
// match m of round r feeds slot m%2 of match m/2 in round r+1.
type Match struct {
	Round       int32
	MatchNumber int32
	PlayerA     string
	PlayerB     string
	WinnerID    string
	Status      MatchStatus
}

// Tournament holds bracket state from registration through completion
type Tournament struct {
	ID              string
	Name            string
	HostID          string
	Status          TournamentStatus
	MaxParticipants int32
	EntryFee        int64
	PrizePool       int64
	Participants    []string
	Matches         []*Match
	CurrentRound    int32
	WinnerID        string
	CreatedAt       int64
	UpdatedAt       int64
	ExpiresAt       int64
}

// Registered reports whether a trainer is currently registered
func (t *Tournament) Registered(trainerID string) bool {
	for _, p := range t.Participants {
		if p == trainerID {
			return true
		}
	}
	return false
}

// MatchAt returns the match for a round and match number, nil when absent
func (t *Tournament) MatchAt(round, number int32) *Match {
	for _, m := range t.Matches {
		if m.Round == round && m.MatchNumber == number {
			return m
		}
	}
	return nil
}

// RoundMatches returns all matches in a round, in match-number order.
// Matches are generated in order, so a linear scan preserves it.
func (t *Tournament) RoundMatches(round int32) []*Match {
	var matches []*Match
	for _, m := range t.Matches {
		if m.Round == round {
			matches = append(matches, m)
		}
	}
	return matches
}
