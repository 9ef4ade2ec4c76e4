package models

import "time"

// ============================================================================
// USER MODEL
// ============================================================================

type User struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Gender             string    `json:"gender"`
	Age                int       `json:"age"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"` // Never expose in JSON
	SecurityQuestion   string    `json:"security_question"`
	SecurityAnswerHash string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

// FullName is what the confirmed trip page lists.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

var Genders = []string{"Male", "Female", "Other"}

var SecurityQuestions = []string{
	"What is the name of your first pet?",
	"What is your mother's maiden name?",
	"What was the name of your elementary school?",
	"What city were you born in?",
	"What is your favorite food?",
}

// ============================================================================
// AUTHENTICATION REQUESTS
// ============================================================================

type SignupRequest struct {
	FirstName        string `json:"first_name" binding:"required"`
	LastName         string `json:"last_name" binding:"required"`
	Gender           string `json:"gender" binding:"required"`
	Age              int    `json:"age" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required"`
	SecurityQuestion string `json:"security_question" binding:"required"`
	SecurityAnswer   string `json:"security_answer" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// ============================================================================
// PROFILE
// ============================================================================

type TripSummary struct {
	ID              string `json:"id"`
	TripCode        string `json:"trip_code"`
	TripName        string `json:"trip_name"`
	IsTripConfirmed bool   `json:"is_trip_confirmed"`
	IsVotingClosed  bool   `json:"is_voting_closed"`
}

type UserProfile struct {
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Email        string        `json:"email"`
	Gender       string        `json:"gender"`
	Age          int           `json:"age"`
	CreatedTrips []TripSummary `json:"created_trips"`
	JoinedTrips  []TripSummary `json:"joined_trips"`
}
