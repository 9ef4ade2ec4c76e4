package services

import (
	"testing"
	"time"

	"github.com/LovationAdmin/tripchalo-api/models"

	"github.com/stretchr/testify/assert"
)

func openTrip() *models.Trip {
	deadline := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	return &models.Trip{
		ID:             "trip-1",
		LeaderID:       "leader",
		VotingDeadline: &deadline,
		Itinerary: &models.Itinerary{Options: []models.ItineraryOption{
			{ID: 1, Title: "A", Location: "Goa"},
			{ID: 2, Title: "B", Location: "Hampi"},
		}},
	}
}

func TestStateOf(t *testing.T) {
	trip := openTrip()
	assert.Equal(t, StateOpen, StateOf(trip))

	trip.IsTripConfirmed = true
	assert.Equal(t, StateLocked, StateOf(trip))
}

func TestCheckJoin(t *testing.T) {
	trip := openTrip()
	assert.NoError(t, CheckJoin(trip, false))
	assert.ErrorIs(t, CheckJoin(trip, true), ErrConflict)

	for _, locked := range []func(*models.Trip){
		func(t *models.Trip) { t.IsTripConfirmed = true },
		func(t *models.Trip) { t.IsVotingClosed = true },
	} {
		trip := openTrip()
		locked(trip)
		err := CheckJoin(trip, false)
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, "Voting is completed! You cannot join this trip anymore.", MessageOf(err))
	}
}

func TestCheckLeave(t *testing.T) {
	trip := openTrip()
	assert.ErrorIs(t, CheckLeave(trip, "leader", true), ErrConflict)
	assert.ErrorIs(t, CheckLeave(trip, "stranger", false), ErrNotFound)
	assert.NoError(t, CheckLeave(trip, "member", true))
}

func TestLeaderOnlyChecks(t *testing.T) {
	trip := openTrip()

	assert.ErrorIs(t, CheckDelete(trip, "member"), ErrForbidden)
	assert.NoError(t, CheckDelete(trip, "leader"))

	assert.ErrorIs(t, CheckLock(trip, "member"), ErrForbidden)
	assert.NoError(t, CheckLock(trip, "leader"))

	assert.ErrorIs(t, CheckGenerate(trip, "member"), ErrForbidden)
	assert.NoError(t, CheckGenerate(trip, "leader"))

	assert.ErrorIs(t, CheckFinalize(trip, "member", 1), ErrForbidden)
	assert.NoError(t, CheckFinalize(trip, "leader", 1))
}

func TestApplyLockIsIdempotent(t *testing.T) {
	trip := openTrip()
	assert.True(t, ApplyLock(trip))
	assert.True(t, trip.IsVotingClosed)
	assert.True(t, trip.IsTripConfirmed)
	assert.False(t, ApplyLock(trip))
}

func TestCheckGenerateOnConfirmedTrip(t *testing.T) {
	trip := openTrip()
	trip.IsTripConfirmed = true
	assert.ErrorIs(t, CheckGenerate(trip, "leader"), ErrConflict)
}

func TestCheckVote(t *testing.T) {
	before := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	after := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*models.Trip)
		member bool
		option int
		now    time.Time
		want   error
	}{
		{"ok", nil, true, 2, before, nil},
		{"not a participant", nil, false, 1, before, ErrForbidden},
		{"bad option", nil, true, 3, before, ErrValidation},
		{"no itinerary", func(t *models.Trip) { t.Itinerary = nil }, true, 1, before, ErrConflict},
		{"locked", func(t *models.Trip) { ApplyLock(t) }, true, 1, before, ErrConflict},
		{"past deadline", nil, true, 1, after, ErrConflict},
		{"no deadline", func(t *models.Trip) { t.VotingDeadline = nil }, true, 1, after, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := openTrip()
			if tt.mutate != nil {
				tt.mutate(trip)
			}
			err := CheckVote(trip, tt.member, tt.option, tt.now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCheckFinalizeValidatesOption(t *testing.T) {
	trip := openTrip()
	assert.ErrorIs(t, CheckFinalize(trip, "leader", 3), ErrValidation)

	trip.Itinerary = nil
	assert.ErrorIs(t, CheckFinalize(trip, "leader", 1), ErrConflict)

	// locking first is not required
	trip = openTrip()
	assert.NoError(t, CheckFinalize(trip, "leader", 2))
}

func TestTally(t *testing.T) {
	assert.Equal(t, models.VoteTally{1: 0, 2: 0}, Tally(nil))

	votes := []models.Vote{
		{UserID: "a", OptionSelected: 1},
		{UserID: "b", OptionSelected: 2},
		{UserID: "c", OptionSelected: 2},
		{UserID: "d", OptionSelected: 7},
	}
	assert.Equal(t, models.VoteTally{1: 1, 2: 2}, Tally(votes))
}
