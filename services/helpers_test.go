package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LovationAdmin/tripchalo-api/models"

	"github.com/stretchr/testify/require"
)

const validItineraryJSON = `{
  "analysis_summary": "Young group from Mumbai and Pune, mixed budgets.",
  "options": [
    {
      "id": 1,
      "title": "Coastal Chill",
      "location": "Gokarna, Karnataka",
      "total_estimated_cost": "INR 12,000 per person",
      "vibe_match": "Beach & Chill",
      "why_its_perfect": "Quiet beaches that fit every budget.",
      "itinerary": [
        {"day": 1, "activity": "Arrive; Om Beach sunset"},
        {"day": 2, "activity": "Beach trek from Kudle to Paradise"}
      ]
    },
    {
      "id": 2,
      "title": "Hill Wildcard",
      "location": "Chikmagalur, Karnataka",
      "total_estimated_cost": "INR 10,000 per person",
      "vibe_match": "Nature & Coffee",
      "why_its_perfect": "Coffee estates away from the crowds.",
      "itinerary": [
        {"day": 1, "activity": "Estate stay"},
        {"day": "Day 2", "activity": ["Mullayanagiri sunrise", "Hebbe falls"]}
      ]
    }
  ]
}`

// stubModel returns a canned reply and records prompts.
type stubModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	delay   time.Duration
	prompts []string
}

func (m *stubModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.reply, m.err
}

func (m *stubModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func seedUser(t *testing.T, store *MemoryStore, first, last string) string {
	t.Helper()
	u := &models.User{
		FirstName: first,
		LastName:  last,
		Gender:    "Other",
		Age:       24,
		Email:     first + "@example.com",
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u.ID
}

func prefs(home, budget string, tags ...string) models.PreferencesInput {
	return models.PreferencesInput{
		HomeTown:       home,
		BudgetRange:    budget,
		StartDate:      "2025-12-20",
		EndDate:        "2025-12-24",
		PreferenceTags: tags,
	}
}

func participation(first, budget string, tags ...string) models.Participation {
	return models.Participation{FirstName: first, BudgetRange: budget, PreferenceTags: tags}
}
