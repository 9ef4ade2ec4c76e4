package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/LovationAdmin/tripchalo-api/models"

	"github.com/samber/lo"
)

// AssistantContext is everything the assistant may talk about: the finalized
// option and the group.
type AssistantContext struct {
	Location     string
	Cost         string
	Days         []models.DayPlan
	Participants []string
}

// NewAssistantContext builds the context from the chosen option; a nil
// option gives an empty plan.
func NewAssistantContext(option *models.ItineraryOption, participants []string) AssistantContext {
	ctx := AssistantContext{Participants: participants}
	if option != nil {
		ctx.Location = option.Location
		ctx.Cost = option.TotalEstimatedCost
		ctx.Days = option.Itinerary
	}
	return ctx
}

const (
	CostNotSpecified = "Not specified"
	UnknownLocation  = "Unknown Location"
	AssistantHelp    = "Hi! I'm your trip assistant. Ask me about a day (\"what are we doing on day 2?\"), the cost, where we are going, or who is coming."
)

// AssistantRule is one entry of the ordered rule list.
type AssistantRule struct {
	Name    string
	Matches func(query string) bool
	Answer  func(ctx AssistantContext, query string) string
}

var dayPattern = regexp.MustCompile(`\bday\s*(\d+)`)

var (
	costKeywords        = []string{"cost", "price", "budget", "expensive", "money", "how much"}
	locationKeywords    = []string{"where", "location", "destination", "city", "place"}
	participantKeywords = []string{"who", "people", "participants", "friends", "coming"}
)

// AssistantRules is evaluated top to bottom on the lowercased query and the
// first match answers. The order is part of the contract: a day lookup beats
// cost, cost beats location, location beats participants.
var AssistantRules = []AssistantRule{
	{Name: "day", Matches: dayPattern.MatchString, Answer: answerDay},
	{Name: "cost", Matches: containsAny(costKeywords), Answer: answerCost},
	{Name: "location", Matches: containsAny(locationKeywords), Answer: answerLocation},
	{Name: "participants", Matches: containsAny(participantKeywords), Answer: answerParticipants},
}

// Answer replies to a free-text question. Pure and deterministic.
func Answer(ctx AssistantContext, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, rule := range AssistantRules {
		if rule.Matches(q) {
			return rule.Answer(ctx, q)
		}
	}
	return AssistantHelp
}

func containsAny(keywords []string) func(string) bool {
	return func(q string) bool {
		return lo.SomeBy(keywords, func(k string) bool {
			return strings.Contains(q, k)
		})
	}
}

func answerDay(ctx AssistantContext, q string) string {
	m := dayPattern.FindStringSubmatch(q)
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fmt.Sprintf("I couldn't find any plans for Day %s in the itinerary.", m[1])
	}
	plan, ok := lo.Find(ctx.Days, func(d models.DayPlan) bool {
		return d.Day == n
	})
	if !ok {
		return fmt.Sprintf("I couldn't find any plans for Day %d in the itinerary.", n)
	}
	return fmt.Sprintf("Day %d: %s", n, formatActivities(plan.Activity))
}

func formatActivities(activity string) string {
	parts := lo.Filter(strings.Split(activity, ";"), func(s string, _ int) bool {
		return strings.TrimSpace(s) != ""
	})
	if len(parts) <= 1 {
		return strings.TrimSpace(activity)
	}
	lines := lo.Map(parts, func(s string, _ int) string {
		return "- " + strings.TrimSpace(s)
	})
	return "\n" + strings.Join(lines, "\n")
}

func answerCost(ctx AssistantContext, _ string) string {
	cost := strings.TrimSpace(ctx.Cost)
	if cost == "" {
		cost = CostNotSpecified
	}
	return fmt.Sprintf("The estimated cost is %s.", cost)
}

func answerLocation(ctx AssistantContext, _ string) string {
	loc := strings.TrimSpace(ctx.Location)
	if loc == "" {
		loc = UnknownLocation
	}
	return fmt.Sprintf("We are going to %s!", loc)
}

func answerParticipants(ctx AssistantContext, _ string) string {
	if len(ctx.Participants) == 0 {
		return "Nobody has joined this trip yet."
	}
	return fmt.Sprintf("Coming on this trip: %s.", strings.Join(ctx.Participants, ", "))
}
