// Package tournament implements the tournament orchestrator: registration
// with entry fees, single-elimination bracket generation, and prize payout.
package tournament

//go:generate mockgen -destination=mock/mock_service.go -package=tournamentmock github.com/veramon/reunited-api/internal/orchestrators/tournament Service

import (
	"context"
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/tournaments"
	"github.com/veramon/reunited-api/internal/repositories/trainers"
	"github.com/veramon/reunited-api/internal/rules"
)

// DefaultRegistrationTimeout bounds how long a tournament may sit in
// registration before the sweeper cancels it
const DefaultRegistrationTimeout = 24 * time.Hour

// bracketSizes are the supported bracket sizes, largest first
var bracketSizes = []int{32, 16, 8, 4}

// Service defines the interface for tournament operations
type Service interface {
	// CreateTournament opens a tournament for registration
	CreateTournament(ctx context.Context, input *CreateTournamentInput) (*CreateTournamentOutput, error)

	// GetTournament retrieves a tournament by ID
	GetTournament(ctx context.Context, input *GetTournamentInput) (*GetTournamentOutput, error)

	// Register enters a trainer, debiting the entry fee into the prize pool
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Withdraw removes a registration and refunds the entry fee
	Withdraw(ctx context.Context, input *WithdrawInput) (*WithdrawOutput, error)

	// Start locks registration, trims the field to the largest supported
	// bracket size, shuffles the seeds, and generates round-1 matches.
	// Host only.
	Start(ctx context.Context, input *StartInput) (*StartOutput, error)

	// ReportMatchResult records a match winner, reported by one of the
	// match's players, and propagates it through the bracket
	ReportMatchResult(ctx context.Context, input *ReportMatchResultInput) (*ReportMatchResultOutput, error)

	// ForceMatchWinner records a match winner on the host's authority
	ForceMatchWinner(ctx context.Context, input *ForceMatchWinnerInput) (*ForceMatchWinnerOutput, error)

	// ExpireStale cancels registration-phase tournaments past their
	// deadline, refunding every entry fee
	ExpireStale(ctx context.Context, input *ExpireStaleInput) (*ExpireStaleOutput, error)
}

// Config holds the dependencies for the tournament orchestrator
type Config struct {
	TournamentRepo      tournaments.Repository
	TrainerRepo         trainers.Repository
	Registry            *rules.Registry
	Roller              dice.Roller
	IDGenerator         idgen.Generator
	Clock               clock.Clock
	RegistrationTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if cfg.TournamentRepo == nil {
		vb.RequiredField("TournamentRepo")
	}
	if cfg.TrainerRepo == nil {
		vb.RequiredField("TrainerRepo")
	}
	if cfg.Registry == nil {
		vb.RequiredField("Registry")
	}
	if cfg.Roller == nil {
		vb.RequiredField("Roller")
	}
	if cfg.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	tournamentRepo tournaments.Repository
	trainerRepo    trainers.Repository
	registry       *rules.Registry
	roller         dice.Roller
	idGen          idgen.Generator
	clock          clock.Clock
	regTimeout     time.Duration
}

// NewOrchestrator creates a new tournament orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	timeout := cfg.RegistrationTimeout
	if timeout <= 0 {
		timeout = DefaultRegistrationTimeout
	}

	return &orchestrator{
		tournamentRepo: cfg.TournamentRepo,
		trainerRepo:    cfg.TrainerRepo,
		registry:       cfg.Registry,
		roller:         cfg.Roller,
		idGen:          cfg.IDGenerator,
		clock:          c,
		regTimeout:     timeout,
	}, nil
}

var _ Service = (*orchestrator)(nil)

func (o *orchestrator) CreateTournament(ctx context.Context, input *CreateTournamentInput) (*CreateTournamentOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Name == "" || input.HostID == "" {
		return nil, errors.InvalidArgument("name and host are required")
	}
	if !supportedSize(input.MaxParticipants) {
		return nil, errors.InvalidArgumentf("max participants must be 4, 8, 16 or 32, got %d", input.MaxParticipants)
	}
	if input.EntryFee < 0 {
		return nil, errors.InvalidArgument("entry fee cannot be negative")
	}

	tournament := &veramon.Tournament{
		ID:              o.idGen.Generate(),
		Name:            input.Name,
		HostID:          input.HostID,
		Status:          veramon.TournamentStatusRegistration,
		MaxParticipants: input.MaxParticipants,
		EntryFee:        input.EntryFee,
		ExpiresAt:       o.clock.Now().Add(o.regTimeout).Unix(),
	}

	created, err := o.tournamentRepo.Create(ctx, tournaments.CreateInput{Tournament: tournament})
	if err != nil {
		return nil, err
	}

	slog.Info("tournament created",
		"tournament_id", created.Tournament.ID,
		"host", input.HostID,
		"max_participants", input.MaxParticipants,
		"entry_fee", input.EntryFee,
	)

	return &CreateTournamentOutput{Tournament: created.Tournament}, nil
}

func (o *orchestrator) GetTournament(ctx context.Context, input *GetTournamentInput) (*GetTournamentOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument("tournament ID is required")
	}

	got, err := o.tournamentRepo.Get(ctx, tournaments.GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	return &GetTournamentOutput{Tournament: got.Tournament}, nil
}

func (o *orchestrator) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	if input == nil || input.TournamentID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("tournament ID and trainer ID are required")
	}

	got, err := o.tournamentRepo.Get(ctx, tournaments.GetInput{ID: input.TournamentID})
	if err != nil {
		return nil, err
	}
	tournament := got.Tournament

	if tournament.Status != veramon.TournamentStatusRegistration {
		return nil, errors.FailedPreconditionf("tournament %s is not accepting registrations", tournament.ID)
	}
	if tournament.Registered(input.TrainerID) {
		return nil, errors.AlreadyExistsf("trainer %s is already registered", input.TrainerID)
	}
	if int32(len(tournament.Participants)) >= tournament.MaxParticipants {
		return nil, errors.FailedPreconditionf("tournament %s is full", tournament.ID)
	}

	if tournament.EntryFee > 0 {
		// AdjustTokens rejects the debit when the trainer cannot afford it
		if _, err := o.trainerRepo.AdjustTokens(ctx, trainers.AdjustTokensInput{
			TrainerID: input.TrainerID,
			Delta:     -tournament.EntryFee,
			Reason:    "tournament entry",
		}); err != nil {
			return nil, err
		}
	}

	tournament.Participants = append(tournament.Participants, input.TrainerID)
	tournament.PrizePool += tournament.EntryFee

	updated, err := o.tournamentRepo.Update(ctx, tournaments.UpdateInput{Tournament: tournament})
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{Tournament: updated.Tournament}, nil
}

func (o *orchestrator) Withdraw(ctx context.Context, input *WithdrawInput) (*WithdrawOutput, error) {
	if input == nil || input.TournamentID == "" || input.TrainerID == "" {
		return nil, errors.InvalidArgument("tournament ID and trainer ID are required")
	}

	got, err := o.tournamentRepo.Get(ctx, tournaments.GetInput{ID: input.TournamentID})
	if err != nil {
		return nil, err
	}
	tournament := got.Tournament

	if tournament.Status != veramon.TournamentStatusRegistration {
		return nil, errors.FailedPrecondition("registrations can only be withdrawn before the bracket starts")
	}

	found := -1
	for i, p := range tournament.Participants {
		if p == input.TrainerID {
			found = i
			break
		}
	}
	if found < 0 {
		return nil, errors.NotFoundf("trainer %s is not registered", input.TrainerID)
	}

	if err := o.refund(ctx, tournament, input.TrainerID); err != nil {
		return nil, err
	}

	tournament.Participants = append(tournament.Participants[:found], tournament.Participants[found+1:]...)

	updated, err := o.tournamentRepo.Update(ctx, tournaments.UpdateInput{Tournament: tournament})
	if err != nil {
		return nil, err
	}

	return &WithdrawOutput{Tournament: updated.Tournament}, nil
}

func (o *orchestrator) Start(ctx context.Context, input *StartInput) (*StartOutput, error) {
	if input == nil || input.TournamentID == "" {
		return nil, errors.InvalidArgument("tournament ID is required")
	}

	got, err := o.tournamentRepo.Get(ctx, tournaments.GetInput{ID: input.TournamentID})
	if err != nil {
		return nil, err
	}
	tournament := got.Tournament

	if tournament.HostID != input.HostID {
		return nil, errors.PermissionDeniedf("only the host may start tournament %s", tournament.ID)
	}
	if tournament.Status != veramon.TournamentStatusRegistration {
		return nil, errors.FailedPreconditionf("tournament %s has already started", tournament.ID)
	}

	size := bracketSize(len(tournament.Participants))
	if size == 0 {
		return nil, errors.FailedPreconditionf("tournament needs at least 4 participants, has %d", len(tournament.Participants))
	}

	// The field is trimmed to the bracket size, latest registrants first
	trimmed := tournament.Participants[size:]
	for _, trainerID := range trimmed {
		if err := o.refund(ctx, tournament, trainerID); err != nil {
			return nil, err
		}
	}

	seeds := make([]string, size)
	copy(seeds, tournament.Participants[:size])
	if err := o.shuffle(seeds); err != nil {
		return nil, err
	}

	matches := make([]*veramon.Match, 0, size/2)
	for m := 0; m < size/2; m++ {
		matches = append(matches, &veramon.Match{
			Round:       0,
			MatchNumber: int32(m), // #nosec G115 -- bracket size is at most 32
			PlayerA:     seeds[2*m],
			PlayerB:     seeds[2*m+1],
			Status:      veramon.MatchStatusPending,
		})
	}

	tournament.Participants = seeds
	tournament.Matches = matches
	tournament.CurrentRound = 0
	tournament.Status = veramon.TournamentStatusInProgress
	tournament.ExpiresAt = 0

	updated, err := o.tournamentRepo.Update(ctx, tournaments.UpdateInput{Tournament: tournament})
	if err != nil {
		return nil, err
	}

	slog.Info("tournament started",
		"tournament_id", tournament.ID,
		"bracket_size", size,
		"trimmed", len(trimmed),
		"prize_pool", tournament.PrizePool,
	)

	return &StartOutput{Tournament: updated.Tournament, TrimmedIDs: trimmed}, nil
}

func (o *orchestrator) ReportMatchResult(ctx context.Context, input *ReportMatchResultInput) (*ReportMatchResultOutput, error) {
	if input == nil || input.TournamentID == "" || input.WinnerID == "" {
		return nil, errors.InvalidArgument("tournament ID and winner ID are required")
	}

	got, err := o.tournamentRepo.Get(ctx, tournaments.GetInput{ID: input.TournamentID})
	if err != nil {
		return nil, err
	}
	tournament := got.Tournament

	match, err := o.pendingMatch(tournament, input.Round, input.MatchNumber)
	if err != nil {
		return nil, err
	}
	if input.TrainerID != match.PlayerA && input.TrainerID != match.PlayerB {
		return nil, errors.PermissionDeniedf("trainer %s is not playing in this match", input.TrainerID)
	}

	if err := o.resolveMatch(ctx, tournament, match, input.WinnerID); err != nil {
		return nil, err
	}

	updated, err := o.tournamentRepo.Update(ctx, tournaments.UpdateInput{Tournament: tournament})
	if err != nil {
		return nil, err
	}

	return &ReportMatchResultOutput{Tournament: updated.Tournament}, nil
}

func (o *orchestrator) ForceMatchWinner(ctx context.Context, input *ForceMatchWinnerInput) (*ForceMatchWinnerOutput, error) {
	if input == nil || input.TournamentID == "" || input.WinnerID == "" {
		return nil, errors.InvalidArgument("tournament ID and winner ID are required")
	}

	got, err := o.tournamentRepo.Get(ctx, tournaments.GetInput{ID: input.TournamentID})
	if err != nil {
		return nil, err
	}
	tournament := got.Tournament

	if tournament.HostID != input.HostID {
		return nil, errors.PermissionDeniedf("only the host may force a result in tournament %s", tournament.ID)
	}

	match, err := o.pendingMatch(tournament, input.Round, input.MatchNumber)
	if err != nil {
		return nil, err
	}

	if err := o.resolveMatch(ctx, tournament, match, input.WinnerID); err != nil {
		return nil, err
	}

	slog.Info("match result forced",
		"tournament_id", tournament.ID,
		"round", input.Round,
		"match", input.MatchNumber,
		"winner", input.WinnerID,
	)

	updated, err := o.tournamentRepo.Update(ctx, tournaments.UpdateInput{Tournament: tournament})
	if err != nil {
		return nil, err
	}

	return &ForceMatchWinnerOutput{Tournament: updated.Tournament}, nil
}

func (o *orchestrator) ExpireStale(ctx context.Context, input *ExpireStaleInput) (*ExpireStaleOutput, error) {
	now := o.clock.Now().Unix()

	listed, err := o.tournamentRepo.ListExpired(ctx, tournaments.ListExpiredInput{Now: now})
	if err != nil {
		return nil, err
	}

	output := &ExpireStaleOutput{}
	for _, id := range listed.IDs {
		got, err := o.tournamentRepo.Get(ctx, tournaments.GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		tournament := got.Tournament
		if tournament.Status != veramon.TournamentStatusRegistration {
			continue
		}

		for _, trainerID := range tournament.Participants {
			if err := o.refund(ctx, tournament, trainerID); err != nil {
				return nil, err
			}
		}
		tournament.Status = veramon.TournamentStatusCancelled

		if _, err := o.tournamentRepo.Update(ctx, tournaments.UpdateInput{Tournament: tournament}); err != nil {
			return nil, err
		}

		slog.Info("tournament expired", "tournament_id", id, "refunded", len(tournament.Participants))
		output.ExpiredIDs = append(output.ExpiredIDs, id)
	}

	return output, nil
}

// pendingMatch finds a match and verifies it can still be decided
func (o *orchestrator) pendingMatch(tournament *veramon.Tournament, round, number int32) (*veramon.Match, error) {
	if tournament.Status != veramon.TournamentStatusInProgress {
		return nil, errors.FailedPreconditionf("tournament %s is %s", tournament.ID, tournament.Status)
	}

	match := tournament.MatchAt(round, number)
	if match == nil {
		return nil, errors.NotFoundf("no match %d in round %d", number, round)
	}
	if match.Status == veramon.MatchStatusCompleted {
		return nil, errors.FailedPrecondition("match result is already recorded")
	}
	if match.PlayerA == "" || match.PlayerB == "" {
		return nil, errors.FailedPrecondition("match is waiting on an earlier round")
	}

	return match, nil
}

// resolveMatch records the winner and propagates it: match m of round r
// feeds slot m%2 of match m/2 in round r+1, and the final match pays out
// the prize pool
func (o *orchestrator) resolveMatch(ctx context.Context, tournament *veramon.Tournament, match *veramon.Match, winnerID string) error {
	if winnerID != match.PlayerA && winnerID != match.PlayerB {
		return errors.InvalidArgumentf("winner %s is not playing in this match", winnerID)
	}

	match.WinnerID = winnerID
	match.Status = veramon.MatchStatusCompleted

	if o.matchesInRound(tournament, match.Round) == 1 {
		runnerUp := match.PlayerA
		if winnerID == match.PlayerA {
			runnerUp = match.PlayerB
		}
		return o.complete(ctx, tournament, winnerID, runnerUp)
	}

	next := tournament.MatchAt(match.Round+1, match.MatchNumber/2)
	if next == nil {
		next = &veramon.Match{
			Round:       match.Round + 1,
			MatchNumber: match.MatchNumber / 2,
			Status:      veramon.MatchStatusPending,
		}
		tournament.Matches = append(tournament.Matches, next)
	}
	if match.MatchNumber%2 == 0 {
		next.PlayerA = winnerID
	} else {
		next.PlayerB = winnerID
	}

	if o.roundComplete(tournament, match.Round) {
		tournament.CurrentRound = match.Round + 1
	}

	return nil
}

// complete finishes the tournament and pays the prize pool out of escrow
func (o *orchestrator) complete(ctx context.Context, tournament *veramon.Tournament, winnerID, runnerUpID string) error {
	tournament.Status = veramon.TournamentStatusCompleted
	tournament.WinnerID = winnerID

	constants := o.registry.Constants()
	winnerPrize := int64(float64(tournament.PrizePool) * constants.WinnerPrizeShare)
	runnerUpPrize := int64(float64(tournament.PrizePool) * constants.RunnerUpPrizeShare)

	if winnerPrize > 0 {
		if _, err := o.trainerRepo.AdjustTokens(ctx, trainers.AdjustTokensInput{
			TrainerID: winnerID,
			Delta:     winnerPrize,
			Reason:    "tournament prize",
		}); err != nil {
			return err
		}
	}
	if runnerUpPrize > 0 {
		if _, err := o.trainerRepo.AdjustTokens(ctx, trainers.AdjustTokensInput{
			TrainerID: runnerUpID,
			Delta:     runnerUpPrize,
			Reason:    "tournament prize",
		}); err != nil {
			return err
		}
	}

	slog.Info("tournament completed",
		"tournament_id", tournament.ID,
		"winner", winnerID,
		"winner_prize", winnerPrize,
		"runner_up_prize", runnerUpPrize,
	)

	return nil
}

// refund returns one entry fee and shrinks the pool to match
func (o *orchestrator) refund(ctx context.Context, tournament *veramon.Tournament, trainerID string) error {
	if tournament.EntryFee <= 0 {
		return nil
	}

	if _, err := o.trainerRepo.AdjustTokens(ctx, trainers.AdjustTokensInput{
		TrainerID: trainerID,
		Delta:     tournament.EntryFee,
		Reason:    "tournament refund",
	}); err != nil {
		return err
	}
	tournament.PrizePool -= tournament.EntryFee

	return nil
}

// shuffle seeds the bracket with a Fisher-Yates pass over the injected roller
func (o *orchestrator) shuffle(seeds []string) error {
	for i := len(seeds) - 1; i > 0; i-- {
		roll, err := o.roller.Roll(i + 1)
		if err != nil {
			return errors.Wrap(err, "shuffling bracket seeds")
		}
		j := roll - 1
		seeds[i], seeds[j] = seeds[j], seeds[i]
	}
	return nil
}

func (o *orchestrator) matchesInRound(tournament *veramon.Tournament, round int32) int {
	return len(tournament.RoundMatches(0)) >> round
}

func (o *orchestrator) roundComplete(tournament *veramon.Tournament, round int32) bool {
	completed := 0
	for _, m := range tournament.RoundMatches(round) {
		if m.Status == veramon.MatchStatusCompleted {
			completed++
		}
	}
	return completed == o.matchesInRound(tournament, round)
}

func bracketSize(participants int) int {
	for _, size := range bracketSizes {
		if participants >= size {
			return size
		}
	}
	return 0
}

func supportedSize(n int32) bool {
	switch n {
	case 4, 8, 16, 32:
		return true
	default:
		return false
	}
}
