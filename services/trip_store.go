package services

import (
	"context"
	"errors"

	"github.com/LovationAdmin/tripchalo-api/models"
)

// Store-level sentinels. Services translate them into user-facing errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
)

// TripStore persists trips, participations and votes.
type TripStore interface {
	// CreateTrip inserts the trip and its leader's participation atomically.
	// A taken trip code yields ErrDuplicate.
	CreateTrip(ctx context.Context, trip *models.Trip, leader *models.Participation) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	GetTripByCode(ctx context.Context, code string) (*models.Trip, error)
	ListTripsByLeader(ctx context.Context, userID string) ([]models.Trip, error)
	ListTripsJoined(ctx context.Context, userID string) ([]models.Trip, error)
	// DeleteTrip removes votes, participations and the trip in one unit.
	DeleteTrip(ctx context.Context, tripID string) error
	LockTrip(ctx context.Context, tripID string) error
	// SaveItinerary replaces the options, clears the final choice and drops
	// votes cast on the previous options.
	SaveItinerary(ctx context.Context, tripID string, itinerary *models.Itinerary) error
	// SetFinalOption records the chosen option and locks the trip with it.
	SetFinalOption(ctx context.Context, tripID string, option int) error

	// AddParticipant yields ErrDuplicate when (trip, user) already exists.
	AddParticipant(ctx context.Context, p *models.Participation) error
	GetParticipation(ctx context.Context, tripID, userID string) (*models.Participation, error)
	// ListParticipants returns participations in join order with user fields.
	ListParticipants(ctx context.Context, tripID string) ([]models.Participation, error)
	RemoveParticipant(ctx context.Context, tripID, userID string) error

	// UpsertVote keeps at most one vote per (trip, user).
	UpsertVote(ctx context.Context, vote *models.Vote) error
	ListVotes(ctx context.Context, tripID string) ([]models.Vote, error)
}

// UserStore persists accounts.
type UserStore interface {
	// CreateUser fills the generated ID. A taken email yields ErrDuplicate.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
