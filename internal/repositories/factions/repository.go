// Package factions provides the interface for faction persistence
package factions

//go:generate mockgen -destination=mock/mock_repository.go -package=factionsmock github.com/veramon/reunited-api/internal/repositories/factions Repository

import (
	"context"

	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// Repository defines the interface for faction persistence
type Repository interface {
	// Create creates a new faction, reserving its name
	// Returns errors.AlreadyExists if the ID or name is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a faction by ID
	// Returns errors.NotFound if the faction doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update updates an existing faction
	// Returns errors.NotFound if the faction doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete deletes a faction and releases its name
	// Returns errors.NotFound if the faction doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the input for creating a faction
type CreateInput struct {
	Faction *veramon.Faction
}

// CreateOutput defines the output for creating a faction
type CreateOutput struct {
	Faction *veramon.Faction
}

// GetInput defines the input for getting a faction
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a faction
type GetOutput struct {
	Faction *veramon.Faction
}

// UpdateInput defines the input for updating a faction
type UpdateInput struct {
	Faction *veramon.Faction
}

// UpdateOutput defines the output for updating a faction
type UpdateOutput struct {
	Faction *veramon.Faction
}

// DeleteInput defines the input for deleting a faction
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a faction
type DeleteOutput struct{}
