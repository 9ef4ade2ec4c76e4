package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LovationAdmin/tripchalo-api/models"
	"github.com/LovationAdmin/tripchalo-api/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct{ err error }

func (s stubTokens) GenerateAccessToken(userID, email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + userID, nil
}

func validSignup() *models.SignupRequest {
	return &models.SignupRequest{
		FirstName:        "Asha",
		LastName:         "Rao",
		Gender:           "Female",
		Age:              26,
		Email:            "Asha@Example.com",
		Password:         "goa2025trip",
		SecurityQuestion: models.SecurityQuestions[3],
		SecurityAnswer:   "Mumbai",
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SignupRequest)
	}{
		{"under 18", func(r *models.SignupRequest) { r.Age = 17 }},
		{"short password", func(r *models.SignupRequest) { r.Password = "a1" }},
		{"no digit", func(r *models.SignupRequest) { r.Password = "onlyletters" }},
		{"no letter", func(r *models.SignupRequest) { r.Password = "1234567890" }},
		{"unknown gender", func(r *models.SignupRequest) { r.Gender = "robot" }},
		{"unknown question", func(r *models.SignupRequest) { r.SecurityQuestion = "Favourite colour?" }},
		{"blank answer", func(r *models.SignupRequest) { r.SecurityAnswer = "  " }},
		{"blank name", func(r *models.SignupRequest) { r.LastName = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.mutate(req)
			assert.ErrorIs(t, ValidateSignup(req), ErrValidation)
		})
	}

	assert.NoError(t, ValidateSignup(validSignup()))
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewUserService(store, store, stubTokens{}, nil)

	resp, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, "token-"+resp.User.ID, resp.AccessToken)
	assert.Equal(t, "asha@example.com", resp.User.Email)

	stored, err := store.GetUserByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "goa2025trip", stored.PasswordHash)
	assert.True(t, utils.CheckPassword("goa2025trip", stored.PasswordHash))
	assert.True(t, utils.CheckPassword("mumbai", stored.SecurityAnswerHash))

	_, err = svc.Signup(ctx, validSignup())
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Email already registered", MessageOf(err))

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "asha@example.com", Password: "goa2025trip"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "asha@example.com", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "goa2025trip"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignupTokenFailure(t *testing.T) {
	store := NewMemoryStore()
	svc := NewUserService(store, store, stubTokens{err: errors.New("no key")}, nil)

	_, err := svc.Signup(context.Background(), validSignup())
	assert.Error(t, err)
	assert.Equal(t, Kind(""), KindOf(err))
}

func TestProfileListsCreatedAndJoinedTrips(t *testing.T) {
	ctx := context.Background()
	f := newTripFixture(t)
	users := NewUserService(f.store, f.store, stubTokens{}, nil)

	own := f.createTrip(t, 2)
	_, err := f.svc.CreateTrip(ctx, f.friend, &models.CreateTripRequest{
		TripName:         "Friend's trip",
		VotingDays:       1,
		PreferencesInput: prefs("Pune", "Low"),
	})
	require.NoError(t, err)
	f.join(t, own, f.friend)

	profile, err := users.Profile(ctx, f.friend)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", profile.FirstName)
	require.Len(t, profile.CreatedTrips, 1)
	assert.Equal(t, "Friend's trip", profile.CreatedTrips[0].TripName)
	require.Len(t, profile.JoinedTrips, 1)
	assert.Equal(t, own.TripCode, profile.JoinedTrips[0].TripCode)

	_, err = users.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
