package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/LovationAdmin/tripchalo-api/models"
	"github.com/LovationAdmin/tripchalo-api/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	MinVotingDays = 1
	MaxVotingDays = 7

	dateLayout          = "2006-01-02"
	maxTripCodeAttempts = 10
)

// ItineraryProducer turns participant contexts into two options.
type ItineraryProducer interface {
	Generate(ctx context.Context, participants []ParticipantContext) (*models.Itinerary, error)
}

type TripService struct {
	store     TripStore
	generator ItineraryProducer
	logger    *zap.Logger
	now       func() time.Time
	newCode   func() (string, error)
}

func NewTripService(store TripStore, generator ItineraryProducer, logger *zap.Logger) *TripService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripService{
		store:     store,
		generator: generator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newCode:   utils.GenerateTripCode,
	}
}

// WithClock replaces the time source.
func (s *TripService) WithClock(now func() time.Time) *TripService {
	s.now = now
	return s
}

// WithCodeGenerator replaces the trip code source.
func (s *TripService) WithCodeGenerator(gen func() (string, error)) *TripService {
	s.newCode = gen
	return s
}

// ============================================================================
// PREFERENCES
// ============================================================================

// NormalizePreferences validates one participant's input and trims it in
// place. Tag order and duplicates are kept; blank tags are dropped.
func NormalizePreferences(p *models.PreferencesInput) error {
	p.HomeTown = strings.TrimSpace(p.HomeTown)
	p.BudgetRange = strings.TrimSpace(p.BudgetRange)
	if p.HomeTown == "" {
		return invalid("Home town is required")
	}
	if p.BudgetRange == "" {
		return invalid("Budget range is required")
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(p.StartDate))
	if err != nil {
		return invalid("Start date must be in YYYY-MM-DD format")
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(p.EndDate))
	if err != nil {
		return invalid("End date must be in YYYY-MM-DD format")
	}
	if end.Before(start) {
		return invalid("End date cannot be before start date")
	}
	p.StartDate = start.Format(dateLayout)
	p.EndDate = end.Format(dateLayout)

	p.PreferenceTags = lo.FilterMap(p.PreferenceTags, func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		return tag, tag != ""
	})
	return nil
}

func newParticipation(tripID, userID string, p models.PreferencesInput, joinedAt time.Time) *models.Participation {
	return &models.Participation{
		TripID:         tripID,
		UserID:         userID,
		HomeTown:       p.HomeTown,
		BudgetRange:    p.BudgetRange,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		PreferenceTags: p.PreferenceTags,
		JoinedAt:       joinedAt,
	}
}

// ============================================================================
// LOOKUPS
// ============================================================================

func (s *TripService) loadTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("Trip not found")
	}
	return trip, err
}

func (s *TripService) isParticipant(ctx context.Context, tripID, userID string) (bool, error) {
	_, err := s.store.GetParticipation(ctx, tripID, userID)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// loadMemberTrip loads a trip the caller takes part in.
func (s *TripService) loadMemberTrip(ctx context.Context, tripID, userID string) (*models.Trip, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	ok, err := s.isParticipant(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, forbidden("You are not part of this trip")
	}
	return trip, nil
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// CreateTrip opens a trip with the caller as leader and first participant.
func (s *TripService) CreateTrip(ctx context.Context, leaderID string, req *models.CreateTripRequest) (*models.Trip, error) {
	name := strings.TrimSpace(req.TripName)
	if name == "" {
		return nil, invalid("Trip name is required")
	}
	if req.VotingDays < MinVotingDays || req.VotingDays > MaxVotingDays {
		return nil, invalid("Voting days must be between 1 and 7")
	}
	if err := NormalizePreferences(&req.PreferencesInput); err != nil {
		return nil, err
	}

	now := s.now()
	deadline := now.Add(time.Duration(req.VotingDays) * 24 * time.Hour)

	for attempt := 0; attempt < maxTripCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		trip := &models.Trip{
			TripName:       name,
			TripCode:       code,
			LeaderID:       leaderID,
			CreatedAt:      now,
			VotingDeadline: &deadline,
		}
		leader := newParticipation("", leaderID, req.PreferencesInput, now)

		err = s.store.CreateTrip(ctx, trip, leader)
		if errors.Is(err, ErrDuplicate) {
			s.logger.Debug("trip code collision, retrying", zap.String("code", code))
			continue
		}
		if err != nil {
			return nil, err
		}
		utils.LogTripAction(s.logger, "create", trip.ID, leaderID)
		return trip, nil
	}
	return nil, conflict("Could not allocate a unique trip code, please try again")
}

// JoinTrip adds the caller to the trip behind code.
func (s *TripService) JoinTrip(ctx context.Context, userID string, req *models.JoinTripRequest) (*models.Trip, error) {
	code := utils.NormalizeTripCode(req.TripCode)
	trip, err := s.store.GetTripByCode(ctx, code)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("Invalid Trip Code")
	}
	if err != nil {
		return nil, err
	}

	joined, err := s.isParticipant(ctx, trip.ID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckJoin(trip, joined); err != nil {
		return nil, err
	}
	if err := NormalizePreferences(&req.PreferencesInput); err != nil {
		return nil, err
	}

	p := newParticipation(trip.ID, userID, req.PreferencesInput, s.now())
	if err := s.store.AddParticipant(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, conflict("You have already joined this trip!")
		}
		return nil, err
	}
	utils.LogTripAction(s.logger, "join", trip.ID, userID)
	return trip, nil
}

// TripDetails is the dashboard view: flags, names and group statistics.
func (s *TripService) TripDetails(ctx context.Context, tripID, userID string) (*models.TripDetail, error) {
	trip, err := s.loadMemberTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, err
	}
	stats := Aggregate(participants)

	return &models.TripDetail{
		ID:              trip.ID,
		TripName:        trip.TripName,
		TripCode:        trip.TripCode,
		LeaderID:        trip.LeaderID,
		IsTripConfirmed: trip.IsTripConfirmed,
		IsVotingClosed:  trip.IsVotingClosed,
		VotingDeadline:  trip.VotingDeadline,
		CreatedAt:       trip.CreatedAt,
		Participants:    stats.Participants,
		BudgetStats:     stats.BudgetStats,
		TagStats:        stats.TagStats,
		HasItinerary:    trip.Itinerary != nil,
	}, nil
}

func (s *TripService) LeaveTrip(ctx context.Context, tripID, userID string) error {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return err
	}
	member, err := s.isParticipant(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if err := CheckLeave(trip, userID, member); err != nil {
		return err
	}
	if err := s.store.RemoveParticipant(ctx, tripID, userID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return notFound("You are not part of this trip")
		}
		return err
	}
	utils.LogTripAction(s.logger, "leave", tripID, userID)
	return nil
}

func (s *TripService) DeleteTrip(ctx context.Context, tripID, userID string) error {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if err := CheckDelete(trip, userID); err != nil {
		return err
	}
	if err := s.store.DeleteTrip(ctx, tripID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return notFound("Trip not found")
		}
		return err
	}
	utils.LogTripAction(s.logger, "delete", tripID, userID)
	return nil
}

// LockTrip closes voting and confirms the trip. Locking twice succeeds.
func (s *TripService) LockTrip(ctx context.Context, tripID, userID string) (*models.Trip, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := CheckLock(trip, userID); err != nil {
		return nil, err
	}
	if ApplyLock(trip) {
		if err := s.store.LockTrip(ctx, tripID); err != nil {
			return nil, err
		}
		utils.LogTripAction(s.logger, "lock", tripID, userID)
	}
	return trip, nil
}

// ============================================================================
// ITINERARY
// ============================================================================

// GenerateItinerary asks the model for two options and stores them. On any
// generation failure nothing is written.
func (s *TripService) GenerateItinerary(ctx context.Context, tripID, userID string) (*models.Itinerary, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := CheckGenerate(trip, userID); err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, ErrGenerationFailed
	}

	itinerary, err := s.generator.Generate(ctx, NewParticipantContexts(participants))
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveItinerary(ctx, tripID, itinerary); err != nil {
		return nil, err
	}
	utils.LogTripAction(s.logger, "generate", tripID, userID)
	return itinerary, nil
}

// GetItinerary returns the options, the live tally and the caller's vote.
func (s *TripService) GetItinerary(ctx context.Context, tripID, userID string) (*models.ItineraryView, error) {
	trip, err := s.loadMemberTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if trip.Itinerary == nil {
		return &models.ItineraryView{HasGenerated: false}, nil
	}

	votes, err := s.store.ListVotes(ctx, tripID)
	if err != nil {
		return nil, err
	}
	view := &models.ItineraryView{
		HasGenerated: true,
		Data:         trip.Itinerary,
		Votes:        Tally(votes),
		FinalChoice:  trip.FinalChosenOption,
	}
	if mine, ok := lo.Find(votes, func(v models.Vote) bool { return v.UserID == userID }); ok {
		option := mine.OptionSelected
		view.UserVote = &option
	}
	return view, nil
}

// Vote records or replaces the caller's vote and returns the new tally.
func (s *TripService) Vote(ctx context.Context, tripID, userID string, option int) (models.VoteTally, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	member, err := s.isParticipant(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckVote(trip, member, option, s.now()); err != nil {
		return nil, err
	}

	vote := &models.Vote{TripID: tripID, UserID: userID, OptionSelected: option, UpdatedAt: s.now()}
	if err := s.store.UpsertVote(ctx, vote); err != nil {
		return nil, err
	}
	votes, err := s.store.ListVotes(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return Tally(votes), nil
}

// Finalize fixes the trip's plan to one option. It also locks the trip, so a
// chosen option always sits on a confirmed trip.
func (s *TripService) Finalize(ctx context.Context, tripID, userID string, option int) (*models.Trip, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := CheckFinalize(trip, userID, option); err != nil {
		return nil, err
	}
	if err := s.store.SetFinalOption(ctx, tripID, option); err != nil {
		return nil, err
	}
	ApplyLock(trip)
	trip.FinalChosenOption = &option
	utils.LogTripAction(s.logger, "finalize", tripID, userID)
	return trip, nil
}

// ============================================================================
// CONFIRMED TRIP
// ============================================================================

func (s *TripService) finalOption(trip *models.Trip) (*models.ItineraryOption, bool) {
	if trip.FinalChosenOption == nil {
		return nil, false
	}
	return trip.Itinerary.Option(*trip.FinalChosenOption)
}

// ConfirmedDetails is the page shown once an option has been chosen.
func (s *TripService) ConfirmedDetails(ctx context.Context, tripID, userID string) (*models.ConfirmedTrip, error) {
	trip, err := s.loadMemberTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	option, ok := s.finalOption(trip)
	if !ok {
		return nil, conflict("Trip has not been finalized yet")
	}
	participants, err := s.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, err
	}

	confirmed := &models.ConfirmedTrip{
		ID:        trip.ID,
		TripName:  trip.TripName,
		TripCode:  trip.TripCode,
		Location:  option.Location,
		Itinerary: option.Itinerary,
		Participants: lo.Map(participants, func(p models.Participation, _ int) models.ParticipantRef {
			return models.ParticipantRef{ID: p.UserID, Name: p.FullName()}
		}),
	}
	if len(participants) > 0 {
		confirmed.StartDate = participants[0].StartDate
	}
	return confirmed, nil
}

// Chat answers a question about the chosen plan. Without a chosen option the
// assistant works from an empty plan.
func (s *TripService) Chat(ctx context.Context, tripID, userID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", invalid("Message is required")
	}
	trip, err := s.loadMemberTrip(ctx, tripID, userID)
	if err != nil {
		return "", err
	}
	participants, err := s.store.ListParticipants(ctx, tripID)
	if err != nil {
		return "", err
	}

	option, _ := s.finalOption(trip)
	actx := NewAssistantContext(option, ParticipantNames(participants))
	return Answer(actx, message), nil
}
