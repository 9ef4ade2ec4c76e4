package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/tripchalo-api/models"

	"github.com/kr/text"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// TextModel is a generative text provider: prompt in, free text out.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ParticipantContext is what the model sees about one traveller.
type ParticipantContext struct {
	Age      int      `json:"age"`
	Gender   string   `json:"gender"`
	HomeTown string   `json:"home_town"`
	Budget   string   `json:"budget"`
	Tags     []string `json:"tags"`
	Dates    string   `json:"dates"`
}

// NewParticipantContexts builds model input from stored participations.
func NewParticipantContexts(participants []models.Participation) []ParticipantContext {
	return lo.Map(participants, func(p models.Participation, _ int) ParticipantContext {
		tags := p.PreferenceTags
		if tags == nil {
			tags = []string{}
		}
		return ParticipantContext{
			Age:      p.Age,
			Gender:   p.Gender,
			HomeTown: p.HomeTown,
			Budget:   p.BudgetRange,
			Tags:     tags,
			Dates:    fmt.Sprintf("%s to %s", p.StartDate, p.EndDate),
		}
	})
}

// ============================================================================
// GENERATION RESULT
// ============================================================================

type GenerationStatus int

const (
	GenerationOK GenerationStatus = iota
	GenerationParseError
	GenerationSchemaError
	GenerationTransportError
)

func (s GenerationStatus) String() string {
	switch s {
	case GenerationOK:
		return "ok"
	case GenerationParseError:
		return "parse_error"
	case GenerationSchemaError:
		return "schema_error"
	case GenerationTransportError:
		return "transport_error"
	}
	return "unknown"
}

// GenerationResult is the outcome of one generation attempt. Itinerary is set
// only when Status is GenerationOK.
type GenerationResult struct {
	Status    GenerationStatus
	Itinerary *models.Itinerary
	Err       error
}

func (r GenerationResult) OK() bool { return r.Status == GenerationOK }

// ErrGenerationFailed is the single outcome callers see for any failed
// generation.
var ErrGenerationFailed = newError(KindExternal, "AI Generation Failed", nil)

// ============================================================================
// GENERATOR
// ============================================================================

type ItineraryGenerator struct {
	model   TextModel
	timeout time.Duration
	logger  *zap.Logger
}

func NewItineraryGenerator(model TextModel, timeout time.Duration, logger *zap.Logger) *ItineraryGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItineraryGenerator{model: model, timeout: timeout, logger: logger}
}

// Generate calls the model once and returns exactly two options, or
// ErrGenerationFailed.
func (g *ItineraryGenerator) Generate(ctx context.Context, participants []ParticipantContext) (*models.Itinerary, error) {
	result := g.Run(ctx, participants)
	if !result.OK() {
		g.logger.Warn("itinerary generation failed",
			zap.String("status", result.Status.String()),
			zap.Int("participants", len(participants)),
			zap.Error(result.Err))
		return nil, ErrGenerationFailed
	}
	g.logger.Info("itinerary generated",
		zap.Int("participants", len(participants)),
		zap.Strings("locations", lo.Map(result.Itinerary.Options, func(o models.ItineraryOption, _ int) string {
			return o.Location
		})))
	return result.Itinerary, nil
}

// Run performs one attempt and reports the tagged outcome.
func (g *ItineraryGenerator) Run(ctx context.Context, participants []ParticipantContext) GenerationResult {
	if g.model == nil {
		return GenerationResult{Status: GenerationTransportError, Err: errors.New("no text model configured")}
	}
	prompt, err := BuildItineraryPrompt(participants)
	if err != nil {
		return GenerationResult{Status: GenerationParseError, Err: err}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	reply, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return GenerationResult{Status: GenerationTransportError, Err: err}
	}
	return ParseItinerary(reply)
}

// ============================================================================
// PROMPT BUILDING
// ============================================================================

const itineraryPromptTemplate = `SYSTEM INSTRUCTION:
You are an expert AI Travel Agent specializing in personalized group travel.

YOUR GOAL:
Analyze the provided USER DATA and generate exactly TWO distinct trip itineraries.

ANALYSIS GUIDELINES:
1. Origin: look at every 'home_town'. If most travellers come from one country, suggest destinations inside that country unless they asked for international travel.
2. Change of scene: the destination MUST differ from every home town.
3. Demographics:
   - 'age': a young group (18-25) wants budget, energy and nightlife; a mixed or older group wants comfort and accessibility.
   - 'gender': the destination must be safe and comfortable for the group's gender composition.
4. Underrated gems: avoid the most obvious tourist trap; prefer budget-friendly, high-value places.

THE TWO OPTIONS:
- Option 1 (The Crowd Pleaser): the balanced choice that fits the majority of budgets, tags and dates.
- Option 2 (The Underrated Wildcard): a less commercialized place within the same budget that offers a distinct experience.

OUTPUT FORMAT:
Return ONLY valid JSON. No markdown, no code fences, no commentary.

JSON Schema:
{
  "analysis_summary": "How age, gender and origins shaped the choices",
  "options": [
    {
      "id": 1,
      "title": "Name of the trip",
      "location": "City, State/Country",
      "total_estimated_cost": "Cost per person",
      "vibe_match": "Nature & Chill",
      "why_its_perfect": "Why it fits this group",
      "itinerary": [
        { "day": 1, "activity": "..." },
        { "day": 2, "activity": "..." }
      ]
    },
    {
      "id": 2,
      "title": "...",
      "location": "...",
      "total_estimated_cost": "...",
      "vibe_match": "...",
      "why_its_perfect": "...",
      "itinerary": [ { "day": 1, "activity": "..." } ]
    }
  ]
}

USER DATA TO PROCESS:
%s
`

// BuildItineraryPrompt serializes the group into the generation prompt.
func BuildItineraryPrompt(participants []ParticipantContext) (string, error) {
	if participants == nil {
		participants = []ParticipantContext{}
	}
	data, err := json.MarshalIndent(participants, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal participants: %w", err)
	}
	return fmt.Sprintf(itineraryPromptTemplate, text.Indent(string(data), "  ")), nil
}

// ============================================================================
// JSON PARSING
// ============================================================================

// ExtractJSONObject returns the text between the first '{' and the last '}'.
func ExtractJSONObject(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return "", false
	}
	return reply[start : end+1], true
}

// ParseItinerary decodes a model reply into a validated two-option itinerary.
func ParseItinerary(reply string) GenerationResult {
	payload, ok := ExtractJSONObject(reply)
	if !ok {
		return GenerationResult{Status: GenerationParseError, Err: errors.New("no JSON object in model reply")}
	}

	var itinerary models.Itinerary
	if err := json.Unmarshal([]byte(payload), &itinerary); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return GenerationResult{Status: GenerationParseError, Err: err}
		}
		return GenerationResult{Status: GenerationSchemaError, Err: err}
	}

	if err := ValidateItinerary(&itinerary); err != nil {
		return GenerationResult{Status: GenerationSchemaError, Err: err}
	}
	return GenerationResult{Status: GenerationOK, Itinerary: &itinerary}
}

// ValidateItinerary enforces exactly two options with ids 1 and 2, each with
// a title, a location and at least one positive day.
func ValidateItinerary(it *models.Itinerary) error {
	if len(it.Options) != 2 {
		return fmt.Errorf("expected 2 options, got %d", len(it.Options))
	}
	seen := map[int]bool{}
	for _, opt := range it.Options {
		if opt.ID != 1 && opt.ID != 2 {
			return fmt.Errorf("option id %d is not 1 or 2", opt.ID)
		}
		if seen[opt.ID] {
			return fmt.Errorf("duplicate option id %d", opt.ID)
		}
		seen[opt.ID] = true
		if strings.TrimSpace(opt.Title) == "" {
			return fmt.Errorf("option %d has no title", opt.ID)
		}
		if strings.TrimSpace(opt.Location) == "" {
			return fmt.Errorf("option %d has no location", opt.ID)
		}
		if len(opt.Itinerary) == 0 {
			return fmt.Errorf("option %d has no days", opt.ID)
		}
		for _, day := range opt.Itinerary {
			if day.Day <= 0 {
				return fmt.Errorf("option %d has invalid day %d", opt.ID, day.Day)
			}
		}
	}
	return nil
}
