package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// TRIP MODELS
// ============================================================================

type Trip struct {
	ID                string     `json:"id"`
	TripName          string     `json:"trip_name"`
	TripCode          string     `json:"trip_code"`
	LeaderID          string     `json:"leader_id"`
	CreatedAt         time.Time  `json:"created_at"`
	VotingDeadline    *time.Time `json:"voting_deadline,omitempty"`
	IsVotingClosed    bool       `json:"is_voting_closed"`
	IsTripConfirmed   bool       `json:"is_trip_confirmed"`
	Itinerary         *Itinerary `json:"-"`
	FinalChosenOption *int       `json:"final_chosen_option,omitempty"`
}

// Participation holds one user's preferences for one trip. The user columns
// are filled from a join on users when listing.
type Participation struct {
	ID             string    `json:"id"`
	TripID         string    `json:"trip_id"`
	UserID         string    `json:"user_id"`
	HomeTown       string    `json:"home_town"`
	BudgetRange    string    `json:"budget_range"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	PreferenceTags []string  `json:"preference_tags"`
	JoinedAt       time.Time `json:"joined_at"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Age       int    `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

func (p Participation) FullName() string {
	return User{FirstName: p.FirstName, LastName: p.LastName}.FullName()
}

type Vote struct {
	TripID         string    `json:"trip_id"`
	UserID         string    `json:"user_id"`
	OptionSelected int       `json:"option_selected"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ============================================================================
// ITINERARY (AI OUTPUT)
// ============================================================================

type Itinerary struct {
	AnalysisSummary string            `json:"analysis_summary"`
	Options         []ItineraryOption `json:"options"`
}

type ItineraryOption struct {
	ID                 int       `json:"id"`
	Title              string    `json:"title"`
	Location           string    `json:"location"`
	TotalEstimatedCost string    `json:"total_estimated_cost"`
	VibeMatch          string    `json:"vibe_match"`
	WhyItsPerfect      string    `json:"why_its_perfect"`
	Itinerary          []DayPlan `json:"itinerary"`
}

type DayPlan struct {
	Day      int    `json:"day"`
	Activity string `json:"activity"`
}

// Option returns the option with the given id.
func (it *Itinerary) Option(id int) (*ItineraryOption, bool) {
	if it == nil {
		return nil, false
	}
	for i := range it.Options {
		if it.Options[i].ID == id {
			return &it.Options[i], true
		}
	}
	return nil, false
}

// UnmarshalJSON accepts "day" as a number or a numeric string ("2", "Day 2")
// and "activity" as a string or a list of strings.
func (d *DayPlan) UnmarshalJSON(data []byte) error {
	var raw struct {
		Day      json.RawMessage `json:"day"`
		Activity json.RawMessage `json:"activity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	day, err := parseDayNumber(raw.Day)
	if err != nil {
		return err
	}
	d.Day = day

	if len(raw.Activity) == 0 || string(raw.Activity) == "null" {
		d.Activity = ""
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Activity, &single); err == nil {
		d.Activity = strings.TrimSpace(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw.Activity, &many); err != nil {
		return fmt.Errorf("activity must be a string or a list of strings")
	}
	d.Activity = strings.Join(many, "; ")
	return nil
}

func parseDayNumber(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("day is required")
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("day must be a number")
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "day"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("day must be a number, got %q", s)
	}
	return n, nil
}

// ============================================================================
// REQUESTS
// ============================================================================

type PreferencesInput struct {
	HomeTown       string   `json:"home_town" binding:"required"`
	BudgetRange    string   `json:"budget_range" binding:"required"`
	StartDate      string   `json:"start_date" binding:"required"`
	EndDate        string   `json:"end_date" binding:"required"`
	PreferenceTags []string `json:"preference_tags"`
}

type CreateTripRequest struct {
	TripName   string `json:"trip_name" binding:"required"`
	VotingDays int    `json:"voting_days" binding:"required"`
	PreferencesInput
}

type JoinTripRequest struct {
	TripCode string `json:"trip_code" binding:"required"`
	PreferencesInput
}

type OptionRequest struct {
	OptionID int `json:"option_id" binding:"required"`
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ============================================================================
// RESPONSES
// ============================================================================

type StatItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type TripDetail struct {
	ID              string     `json:"id"`
	TripName        string     `json:"trip_name"`
	TripCode        string     `json:"trip_code"`
	LeaderID        string     `json:"leader_id"`
	IsTripConfirmed bool       `json:"is_trip_confirmed"`
	IsVotingClosed  bool       `json:"is_voting_closed"`
	VotingDeadline  *time.Time `json:"voting_deadline,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Participants    []string   `json:"participants"`
	BudgetStats     []StatItem `json:"budget_stats"`
	TagStats        []StatItem `json:"tag_stats"`
	HasItinerary    bool       `json:"has_itinerary"`
}

type VoteTally map[int]int

type ItineraryView struct {
	HasGenerated bool       `json:"has_generated"`
	Data         *Itinerary `json:"data,omitempty"`
	Votes        VoteTally  `json:"votes,omitempty"`
	UserVote     *int       `json:"user_vote"`
	FinalChoice  *int       `json:"final_choice"`
}

type ParticipantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ConfirmedTrip struct {
	ID           string           `json:"id"`
	TripName     string           `json:"trip_name"`
	TripCode     string           `json:"trip_code"`
	Location     string           `json:"location"`
	Itinerary    []DayPlan        `json:"itinerary"`
	Participants []ParticipantRef `json:"participants"`
	StartDate    string           `json:"start_date"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
