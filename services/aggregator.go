package services

import (
	"sort"

	"github.com/LovationAdmin/tripchalo-api/models"

	"github.com/samber/lo"
)

// TopTagLimit is how many tags the trip page charts.
const TopTagLimit = 5

// GroupStats is the display summary of a trip's participants.
type GroupStats struct {
	Participants []string
	BudgetStats  []models.StatItem
	TagStats     []models.StatItem
}

// Aggregate computes group statistics from participations in fetch order.
func Aggregate(participants []models.Participation) GroupStats {
	return GroupStats{
		Participants: ParticipantNames(participants),
		BudgetStats:  BudgetStats(participants),
		TagStats:     TopTags(participants, TopTagLimit),
	}
}

// ParticipantNames returns one display name per participation.
func ParticipantNames(participants []models.Participation) []string {
	return lo.Map(participants, func(p models.Participation, _ int) string {
		return p.FirstName
	})
}

// BudgetStats counts budget bands, labels in first-seen order.
func BudgetStats(participants []models.Participation) []models.StatItem {
	budgets := lo.Map(participants, func(p models.Participation, _ int) string {
		return p.BudgetRange
	})
	return countInOrder(budgets)
}

// TopTags flattens every tag list and returns the limit most frequent tags.
// Equal counts keep first-seen order.
func TopTags(participants []models.Participation, limit int) []models.StatItem {
	tags := lo.Flatten(lo.Map(participants, func(p models.Participation, _ int) []string {
		return p.PreferenceTags
	}))
	stats := countInOrder(tags)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Value > stats[j].Value
	})
	if limit >= 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func countInOrder(values []string) []models.StatItem {
	counts := lo.CountValues(values)
	return lo.Map(lo.Uniq(values), func(v string, _ int) models.StatItem {
		return models.StatItem{Name: v, Value: counts[v]}
	})
}
