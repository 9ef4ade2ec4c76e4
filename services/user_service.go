package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/LovationAdmin/tripchalo-api/models"
	"github.com/LovationAdmin/tripchalo-api/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	MinSignupAge      = 18
	MinPasswordLength = 8
)

// TokenGenerator issues access tokens after a successful signup or login.
type TokenGenerator interface {
	GenerateAccessToken(userID, email string) (string, error)
}

type UserService struct {
	users  UserStore
	trips  TripStore
	tokens TokenGenerator
	logger *zap.Logger
}

func NewUserService(users UserStore, trips TripStore, tokens TokenGenerator, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, trips: trips, tokens: tokens, logger: logger}
}

// ValidateSignup checks the fields the binding layer cannot.
func ValidateSignup(req *models.SignupRequest) error {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return invalid("First and last name are required")
	}
	if req.Age < MinSignupAge {
		return invalid("You must be at least 18 years old to sign up")
	}
	if !lo.Contains(models.Genders, req.Gender) {
		return invalid("Gender must be one of: " + strings.Join(models.Genders, ", "))
	}
	if !lo.Contains(models.SecurityQuestions, req.SecurityQuestion) {
		return invalid("Please choose one of the offered security questions")
	}
	if strings.TrimSpace(req.SecurityAnswer) == "" {
		return invalid("Security answer is required")
	}
	return ValidatePassword(req.Password)
}

// ValidatePassword requires a minimum length, a letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("Password must be at least 8 characters long")
	}
	hasLetter := strings.IndexFunc(password, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(password, unicode.IsDigit) >= 0
	if !hasLetter || !hasDigit {
		return invalid("Password must contain at least one letter and one number")
	}
	return nil
}

// Signup creates the account and logs the user in.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if err := ValidateSignup(req); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	answerHash, err := utils.HashPassword(utils.NormalizeSecret(req.SecurityAnswer))
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Gender:             req.Gender,
		Age:                req.Age,
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       passwordHash,
		SecurityQuestion:   req.SecurityQuestion,
		SecurityAnswerHash: answerHash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		utils.LogAuthAction(s.logger, "signup", user.Email, false)
		if errors.Is(err, ErrDuplicate) {
			return nil, conflict("Email already registered")
		}
		return nil, err
	}
	utils.LogAuthAction(s.logger, "signup", user.Email, true)

	return s.issue(user)
}

// Login checks credentials. Unknown email and wrong password look the same.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			utils.LogAuthAction(s.logger, "login", req.Email, false)
			return nil, unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		utils.LogAuthAction(s.logger, "login", req.Email, false)
		return nil, unauthorized("Invalid email or password")
	}
	utils.LogAuthAction(s.logger, "login", req.Email, true)

	return s.issue(user)
}

func (s *UserService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{AccessToken: token, User: *user}, nil
}

// Profile returns the user with the trips they lead and the trips they joined.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	created, err := s.trips.ListTripsByLeader(ctx, userID)
	if err != nil {
		return nil, err
	}
	joined, err := s.trips.ListTripsJoined(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserProfile{
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Gender:       user.Gender,
		Age:          user.Age,
		CreatedTrips: summarize(created),
		JoinedTrips:  summarize(joined),
	}, nil
}

func summarize(trips []models.Trip) []models.TripSummary {
	return lo.Map(trips, func(t models.Trip, _ int) models.TripSummary {
		return models.TripSummary{
			ID:              t.ID,
			TripCode:        t.TripCode,
			TripName:        t.TripName,
			IsTripConfirmed: t.IsTripConfirmed,
			IsVotingClosed:  t.IsVotingClosed,
		}
	})
}
