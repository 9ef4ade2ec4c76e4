package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LovationAdmin/tripchalo-api/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryStore is an in-process TripStore and UserStore. It keeps the same
// uniqueness rules as the Postgres schema and is used for local runs
// (DATABASE_URL=memory://) and tests.
type MemoryStore struct {
	mu sync.Mutex

	users        map[string]models.User
	trips        map[string]models.Trip
	itineraries  map[string][]byte
	participants []models.Participation
	votes        map[string]models.Vote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[string]models.User{},
		trips:       map[string]models.Trip{},
		itineraries: map[string][]byte{},
		votes:       map[string]models.Vote{},
	}
}

var (
	_ TripStore = (*MemoryStore)(nil)
	_ UserStore = (*MemoryStore)(nil)
)

func voteKey(tripID, userID string) string { return tripID + "/" + userID }

// ============================================================================
// USERS
// ============================================================================

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: users_email_key", ErrDuplicate)
		}
	}
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrRecordNotFound
}

// ============================================================================
// TRIPS
// ============================================================================

// tripLocked returns a copy with the itinerary decoded, as a fresh read
// from the database would.
func (m *MemoryStore) tripLocked(id string) (*models.Trip, error) {
	t, ok := m.trips[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if data, ok := m.itineraries[id]; ok {
		var it models.Itinerary
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		t.Itinerary = &it
	}
	if t.FinalChosenOption != nil {
		f := *t.FinalChosenOption
		t.FinalChosenOption = &f
	}
	return &t, nil
}

func (m *MemoryStore) CreateTrip(_ context.Context, trip *models.Trip, leader *models.Participation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.trips {
		if t.TripCode == trip.TripCode {
			return fmt.Errorf("%w: trips_trip_code_key", ErrDuplicate)
		}
	}
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	stored := *trip
	stored.Itinerary = nil
	m.trips[trip.ID] = stored

	leader.TripID = trip.ID
	m.addParticipantLocked(leader)
	return nil
}

func (m *MemoryStore) GetTrip(_ context.Context, tripID string) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tripLocked(tripID)
}

func (m *MemoryStore) GetTripByCode(_ context.Context, code string) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.trips {
		if t.TripCode == code {
			return m.tripLocked(id)
		}
	}
	return nil, ErrRecordNotFound
}

func (m *MemoryStore) ListTripsByLeader(_ context.Context, userID string) ([]models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trips := []models.Trip{}
	for id, t := range m.trips {
		if t.LeaderID == userID {
			trip, err := m.tripLocked(id)
			if err != nil {
				return nil, err
			}
			trips = append(trips, *trip)
		}
	}
	sort.SliceStable(trips, func(i, j int) bool { return trips[i].CreatedAt.After(trips[j].CreatedAt) })
	return trips, nil
}

func (m *MemoryStore) ListTripsJoined(_ context.Context, userID string) ([]models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trips := []models.Trip{}
	for i := len(m.participants) - 1; i >= 0; i-- {
		p := m.participants[i]
		if p.UserID != userID || m.trips[p.TripID].LeaderID == userID {
			continue
		}
		trip, err := m.tripLocked(p.TripID)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
	return trips, nil
}

func (m *MemoryStore) DeleteTrip(_ context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trips[tripID]; !ok {
		return ErrRecordNotFound
	}
	for k, v := range m.votes {
		if v.TripID == tripID {
			delete(m.votes, k)
		}
	}
	m.participants = lo.Reject(m.participants, func(p models.Participation, _ int) bool {
		return p.TripID == tripID
	})
	delete(m.itineraries, tripID)
	delete(m.trips, tripID)
	return nil
}

func (m *MemoryStore) LockTrip(_ context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trips[tripID]
	if !ok {
		return ErrRecordNotFound
	}
	t.IsVotingClosed = true
	t.IsTripConfirmed = true
	m.trips[tripID] = t
	return nil
}

func (m *MemoryStore) SaveItinerary(_ context.Context, tripID string, itinerary *models.Itinerary) error {
	data, err := json.Marshal(itinerary)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trips[tripID]
	if !ok {
		return ErrRecordNotFound
	}
	t.FinalChosenOption = nil
	m.trips[tripID] = t
	m.itineraries[tripID] = data
	for k, v := range m.votes {
		if v.TripID == tripID {
			delete(m.votes, k)
		}
	}
	return nil
}

func (m *MemoryStore) SetFinalOption(_ context.Context, tripID string, option int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trips[tripID]
	if !ok {
		return ErrRecordNotFound
	}
	t.FinalChosenOption = &option
	t.IsVotingClosed = true
	t.IsTripConfirmed = true
	m.trips[tripID] = t
	return nil
}

// ============================================================================
// PARTICIPANTS
// ============================================================================

func (m *MemoryStore) addParticipantLocked(p *models.Participation) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	stored := *p
	stored.PreferenceTags = append([]string{}, p.PreferenceTags...)
	m.participants = append(m.participants, stored)
}

func (m *MemoryStore) AddParticipant(_ context.Context, p *models.Participation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trips[p.TripID]; !ok {
		return ErrRecordNotFound
	}
	if lo.ContainsBy(m.participants, func(x models.Participation) bool {
		return x.TripID == p.TripID && x.UserID == p.UserID
	}) {
		return fmt.Errorf("%w: trip_participants_trip_id_user_id_key", ErrDuplicate)
	}
	m.addParticipantLocked(p)
	return nil
}

// withUser fills the joined user columns.
func (m *MemoryStore) withUser(p models.Participation) models.Participation {
	if u, ok := m.users[p.UserID]; ok {
		p.FirstName = u.FirstName
		p.LastName = u.LastName
		p.Age = u.Age
		p.Gender = u.Gender
	}
	p.PreferenceTags = append([]string{}, p.PreferenceTags...)
	return p
}

func (m *MemoryStore) GetParticipation(_ context.Context, tripID, userID string) (*models.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := lo.Find(m.participants, func(x models.Participation) bool {
		return x.TripID == tripID && x.UserID == userID
	})
	if !ok {
		return nil, ErrRecordNotFound
	}
	p = m.withUser(p)
	return &p, nil
}

// ListParticipants keeps insertion order, which matches joined_at order.
func (m *MemoryStore) ListParticipants(_ context.Context, tripID string) ([]models.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return lo.FilterMap(m.participants, func(p models.Participation, _ int) (models.Participation, bool) {
		if p.TripID != tripID {
			return models.Participation{}, false
		}
		return m.withUser(p), true
	}), nil
}

func (m *MemoryStore) RemoveParticipant(_ context.Context, tripID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(m.participants, func(x models.Participation) bool {
		return x.TripID == tripID && x.UserID == userID
	})
	if !ok {
		return ErrRecordNotFound
	}
	m.participants = append(m.participants[:idx], m.participants[idx+1:]...)
	delete(m.votes, voteKey(tripID, userID))
	return nil
}

// ============================================================================
// VOTES
// ============================================================================

func (m *MemoryStore) UpsertVote(_ context.Context, vote *models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vote.UpdatedAt.IsZero() {
		vote.UpdatedAt = time.Now().UTC()
	}
	m.votes[voteKey(vote.TripID, vote.UserID)] = *vote
	return nil
}

func (m *MemoryStore) ListVotes(_ context.Context, tripID string) ([]models.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	votes := []models.Vote{}
	for _, v := range m.votes {
		if v.TripID == tripID {
			votes = append(votes, v)
		}
	}
	return votes, nil
}

// ParticipantCount reports how many participations exist for a trip,
// including ones whose trip row is gone.
func (m *MemoryStore) ParticipantCount(tripID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.CountBy(m.participants, func(p models.Participation) bool { return p.TripID == tripID })
}

// VoteCount reports how many vote rows exist for a trip.
func (m *MemoryStore) VoteCount(tripID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.CountBy(lo.Values(m.votes), func(v models.Vote) bool { return v.TripID == tripID })
}
