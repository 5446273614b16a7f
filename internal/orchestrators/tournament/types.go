package tournament

import (
	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// CreateTournamentInput defines the input for creating a tournament
type CreateTournamentInput struct {
	Name            string
	HostID          string
	MaxParticipants int32
	EntryFee        int64
}

// CreateTournamentOutput defines the output for creating a tournament
type CreateTournamentOutput struct {
	Tournament *veramon.Tournament
}

// GetTournamentInput defines the input for getting a tournament
type GetTournamentInput struct {
	ID string
}

// GetTournamentOutput defines the output for getting a tournament
type GetTournamentOutput struct {
	Tournament *veramon.Tournament
}

// RegisterInput defines the input for registering a trainer
type RegisterInput struct {
	TournamentID string
	TrainerID    string
}

// RegisterOutput defines the output for registering a trainer
type RegisterOutput struct {
	Tournament *veramon.Tournament
}

// WithdrawInput defines the input for withdrawing a registration
type WithdrawInput struct {
	TournamentID string
	TrainerID    string
}

// WithdrawOutput defines the output for withdrawing a registration
type WithdrawOutput struct {
	Tournament *veramon.Tournament
}

// StartInput defines the input for starting the bracket
type StartInput struct {
	TournamentID string
	HostID       string
}

// StartOutput defines the output for starting the bracket. TrimmedIDs lists
// the registrants who did not fit the bracket and were refunded.
type StartOutput struct {
	Tournament *veramon.Tournament
	TrimmedIDs []string
}

// ReportMatchResultInput defines the input for a player reporting a result
type ReportMatchResultInput struct {
	TournamentID string
	TrainerID    string
	Round        int32
	MatchNumber  int32
	WinnerID     string
}

// ReportMatchResultOutput defines the output for reporting a result
type ReportMatchResultOutput struct {
	Tournament *veramon.Tournament
}

// ForceMatchWinnerInput defines the input for a host overriding a result
type ForceMatchWinnerInput struct {
	TournamentID string
	HostID       string
	Round        int32
	MatchNumber  int32
	WinnerID     string
}

// ForceMatchWinnerOutput defines the output for overriding a result
type ForceMatchWinnerOutput struct {
	Tournament *veramon.Tournament
}

// ExpireStaleInput defines the input for the stale-tournament sweep
type ExpireStaleInput struct{}

// ExpireStaleOutput lists the tournaments the sweep cancelled
type ExpireStaleOutput struct {
	ExpiredIDs []string
}
