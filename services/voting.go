package services

import (
	"time"

	"github.com/LovationAdmin/tripchalo-api/models"

	"github.com/samber/lo"
)

// TripState is the lifecycle of a trip. Lock sets voting_closed and
// confirmed together, so a trip is either open or locked.
type TripState string

const (
	StateOpen   TripState = "OPEN"
	StateLocked TripState = "LOCKED"
)

// ValidOptionIDs are the only itinerary options a trip can carry.
var ValidOptionIDs = []int{1, 2}

func StateOf(trip *models.Trip) TripState {
	if trip.IsVotingClosed || trip.IsTripConfirmed {
		return StateLocked
	}
	return StateOpen
}

func isLeader(trip *models.Trip, userID string) bool {
	return trip.LeaderID == userID
}

// CheckJoin allows a join only on an open trip the user is not already in.
func CheckJoin(trip *models.Trip, alreadyJoined bool) error {
	if StateOf(trip) == StateLocked {
		return conflict("Voting is completed! You cannot join this trip anymore.")
	}
	if alreadyJoined {
		return conflict("You have already joined this trip!")
	}
	return nil
}

// CheckLeave lets a participant other than the leader leave.
func CheckLeave(trip *models.Trip, userID string, isParticipant bool) error {
	if isLeader(trip, userID) {
		return conflict("Leaders cannot leave. Delete the trip instead.")
	}
	if !isParticipant {
		return notFound("You are not part of this trip")
	}
	return nil
}

func CheckDelete(trip *models.Trip, userID string) error {
	if !isLeader(trip, userID) {
		return forbidden("Only the Leader can delete this trip")
	}
	return nil
}

func CheckLock(trip *models.Trip, userID string) error {
	if !isLeader(trip, userID) {
		return forbidden("Only the Leader can lock this trip")
	}
	return nil
}

// ApplyLock closes voting and confirms the trip. It reports whether anything
// changed; locking twice is a no-op.
func ApplyLock(trip *models.Trip) bool {
	if trip.IsVotingClosed && trip.IsTripConfirmed {
		return false
	}
	trip.IsVotingClosed = true
	trip.IsTripConfirmed = true
	return true
}

// CheckGenerate allows the leader to (re)generate options until the trip is
// confirmed.
func CheckGenerate(trip *models.Trip, userID string) error {
	if !isLeader(trip, userID) {
		return forbidden("Only Leader can generate")
	}
	if trip.IsTripConfirmed {
		return conflict("Trip is already confirmed")
	}
	return nil
}

// CheckVote gates a vote: participant only, option 1 or 2, options
// generated, voting still open and before the deadline.
func CheckVote(trip *models.Trip, isParticipant bool, option int, now time.Time) error {
	if !isParticipant {
		return forbidden("Only participants can vote")
	}
	if !validOption(option) {
		return invalid("Option must be 1 or 2")
	}
	if trip.Itinerary == nil {
		return conflict("Itinerary has not been generated yet")
	}
	if StateOf(trip) == StateLocked {
		return conflict("Voting is closed")
	}
	if trip.VotingDeadline != nil && now.After(*trip.VotingDeadline) {
		return conflict("Voting deadline has passed")
	}
	return nil
}

// CheckFinalize requires the leader and an option that was generated.
func CheckFinalize(trip *models.Trip, userID string, option int) error {
	if !isLeader(trip, userID) {
		return forbidden("Only the Leader can finalize this trip")
	}
	if trip.Itinerary == nil {
		return conflict("Itinerary has not been generated yet")
	}
	if !validOption(option) {
		return invalid("Option must be 1 or 2")
	}
	if _, ok := trip.Itinerary.Option(option); !ok {
		return invalid("Option was not generated for this trip")
	}
	return nil
}

// Tally counts live votes per option. Ties stay equal; the leader breaks
// them with finalize.
func Tally(votes []models.Vote) models.VoteTally {
	tally := models.VoteTally{}
	for _, id := range ValidOptionIDs {
		tally[id] = 0
	}
	for _, v := range votes {
		if _, ok := tally[v.OptionSelected]; ok {
			tally[v.OptionSelected]++
		}
	}
	return tally
}

func validOption(option int) bool {
	return lo.Contains(ValidOptionIDs, option)
}
