package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/soundlens/soundlens/internal/logger"
	"github.com/soundlens/soundlens/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the Provider interface using OpenAI's API.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support.
func NewOpenAIProviderWithLogger(apiKey, baseURL, model string, log *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    log,
		debugMode: debugMode,
	}
}

// GenerateHabits asks the model for 3-5 structured habit insights.
func (p *OpenAIProvider) GenerateHabits(ctx context.Context, summary *models.Summary) ([]models.HabitInsight, error) {
	content, err := p.complete(ctx, "generate_habits",
		"You are a music analytics assistant that identifies listening habits from statistical summaries. Respond with valid JSON only.",
		buildHabitsPrompt(summary),
	)
	if err != nil {
		return nil, err
	}
	return parseHabits(content)
}

// GeneratePersona asks the model for the listener persona.
func (p *OpenAIProvider) GeneratePersona(ctx context.Context, summary *models.Summary) (*models.PersonaInsight, error) {
	content, err := p.complete(ctx, "generate_persona",
		"You are a music analytics assistant that distills a listener persona from statistical summaries. Respond with valid JSON only.",
		buildPersonaPrompt(summary),
	)
	if err != nil {
		return nil, err
	}
	return parsePersona(content)
}

// complete sends one chat completion and returns the raw response content.
func (p *OpenAIProvider) complete(ctx context.Context, operation, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", logger.SanitizeDebugContent(prompt)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return "", fmt.Errorf("failed to %s: %w", operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", logger.SanitizeDebugContent(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// buildHabitsPrompt renders the flattened summary projection and the habits
// response schema.
func buildHabitsPrompt(summary *models.Summary) string {
	var b strings.Builder
	b.WriteString("Analyze the following listening statistics and identify the listener's habits.\n\n")
	writeSummaryProjection(&b, summary)
	b.WriteString(`
Respond with a JSON object in this format:
{
  "habits": [
    {"title": "...", "description": "...", "confidence": 0-100, "category": "temporal" | "mood" | "genre" | "behavior"}
  ]
}

Guidelines:
- Return between 3 and 5 habits.
- Each description should reference the statistics, not invent facts.
- Confidence reflects how strongly the numbers support the habit.

Return only valid JSON.`)
	return b.String()
}

// buildPersonaPrompt renders the flattened summary projection and the persona
// response schema.
func buildPersonaPrompt(summary *models.Summary) string {
	var b strings.Builder
	b.WriteString("Distill a listener persona from the following listening statistics.\n\n")
	writeSummaryProjection(&b, summary)
	b.WriteString(`
Respond with a JSON object in this format:
{
  "persona": {
    "archetype": "...",
    "personality": "...",
    "listening_style": "...",
    "recommendations": ["...", "...", "..."]
  }
}

Guidelines:
- The archetype is a short evocative label (two or three words).
- Provide exactly 3 recommendations: artists or genres to explore next.

Return only valid JSON.`)
	return b.String()
}

// writeSummaryProjection emits the constrained field set the generator is
// allowed to see.
func writeSummaryProjection(b *strings.Builder, summary *models.Summary) {
	b.WriteString("Listening statistics:\n")

	names := make([]string, 0, len(summary.Overview.TopArtists))
	for _, a := range summary.Overview.TopArtists {
		names = append(names, a.Name)
	}
	fmt.Fprintf(b, "- Top artists: %s\n", strings.Join(names, ", "))

	genres := make([]string, 0, len(summary.Overview.TopGenres))
	for _, g := range summary.Overview.TopGenres {
		genres = append(genres, g.Name)
	}
	fmt.Fprintf(b, "- Top genres: %s\n", strings.Join(genres, ", "))

	profile := summary.Overview.AudioProfile
	fmt.Fprintf(b, "- Audio profile (0-100): energy %d, danceability %d, valence %d, acousticness %d, instrumentalness %d, speechiness %d; tempo %d BPM\n",
		profile.Energy, profile.Danceability, profile.Valence, profile.Acousticness, profile.Instrumentalness, profile.Speechiness, profile.Tempo)

	habits := summary.Habits
	fmt.Fprintf(b, "- Most active hour: %d:00, most active day: %s\n", habits.MostActiveHour, dayName(habits.MostActiveDay))
	fmt.Fprintf(b, "- Artist diversity %d/100, genre diversity %d distinct genres, consistency %d/100\n",
		habits.ArtistDiversity, habits.GenreDiversity, habits.Consistency)
	if habits.TracksPerDay != nil {
		fmt.Fprintf(b, "- Listening velocity: %.1f tracks per day\n", *habits.TracksPerDay)
	}
	fmt.Fprintf(b, "- Mood distribution (%%): energetic %d, calm %d, happy %d, sad %d, danceable %d\n",
		habits.MoodDistribution.Energetic, habits.MoodDistribution.Calm, habits.MoodDistribution.Happy,
		habits.MoodDistribution.Sad, habits.MoodDistribution.Danceable)
	fmt.Fprintf(b, "- Time of day (%%): morning %d, afternoon %d, evening %d, night %d\n",
		habits.TimeOfDay.Morning, habits.TimeOfDay.Afternoon, habits.TimeOfDay.Evening, habits.TimeOfDay.Night)

	fmt.Fprintf(b, "- Artist loyalty score: %d/100\n", summary.Persona.LoyaltyScore)
	fmt.Fprintf(b, "- Mainstream score: %d/100\n", summary.Persona.MainstreamScore)
}

func dayName(day int) string {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if day < 0 || day >= len(days) {
		return "Sunday"
	}
	return days[day]
}
