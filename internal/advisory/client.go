// Package advisory layers optional AI-derived annotations (description
// summaries, fraud analytics, search translation) on top of core data.
// Every call is best-effort: a failure leaves the primary operation intact.
package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModelName = "gemini-1.5-flash-latest"

	// Upstream calls get a hard deadline; a timeout is a recoverable
	// failure and the caller returns its data without enrichment.
	defaultCallTimeout = 20 * time.Second

	summarySystemInstruction = "You are an expert at extracting and organizing information from classified ads. " +
		"You analyze the content and return ONLY relevant key-value pairs as JSON. " +
		"Never include fields with \"Not specified\" or empty values. " +
		"Always respond with valid JSON only, no explanation or additional text."

	analyticsSystemInstruction = "You are a marketplace trust-and-safety analyst. You assess a classified ad and its " +
		"buyer conversations for fraud signals and price plausibility against comparable listings. " +
		"Always respond with a single valid JSON object only, no explanation or additional text."

	searchSystemInstruction = "You translate a shopper's natural-language request into structured search filters " +
		"for a classifieds site. Always respond with a single valid JSON object only."
)

// Client wraps the generative-AI service used for advisory enrichment.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient creates an advisory client with the given API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{
		client:  client,
		model:   defaultModelName,
		timeout: defaultCallTimeout,
	}, nil
}

// Close releases the underlying client.
func (c *Client) Close() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			log.Printf("error closing genai client: %v", err)
		}
	}
}

// generate runs one completion with a bounded timeout and returns the
// concatenated text parts of the first candidate.
func (c *Client) generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	temp := float32(0.2)
	model.GenerationConfig = genai.GenerationConfig{Temperature: &temp}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty completion response", ErrMalformedOutput)
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%w: completion contained no text", ErrMalformedOutput)
	}
	return out.String(), nil
}

// SummaryInput is the free-text ad content to summarize.
type SummaryInput struct {
	Title       string
	Category    string
	SubCategory string
	Description string
}

// SummarizeDescription extracts structured key-value facts from an ad
// description. Placeholder values the model sneaks in despite instructions
// ("Not specified", "N/A", ...) are dropped before returning.
func (c *Client) SummarizeDescription(ctx context.Context, in SummaryInput) (map[string]any, error) {
	prompt := buildSummaryPrompt(in)

	raw, err := c.generate(ctx, summarySystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	parsed := map[string]any{}
	if err := ExtractJSON(raw, &parsed); err != nil {
		return nil, err
	}

	cleaned := make(map[string]any, len(parsed))
	for key, value := range parsed {
		s := strings.TrimSpace(fmt.Sprint(value))
		if s == "" || s == "Not specified" || s == "N/A" || s == "Not mentioned" {
			continue
		}
		cleaned[key] = value
	}
	return cleaned, nil
}

func buildSummaryPrompt(in SummaryInput) string {
	sub := in.SubCategory
	if sub == "" {
		sub = "General"
	}
	return fmt.Sprintf(`Analyze this classified ad and extract ALL relevant information as key-value pairs.

Ad Title: %s
Category: %s
Sub-category: %s

Description:
%q

Instructions:
1. Extract ONLY information that is EXPLICITLY mentioned in the description
2. Create clear, descriptive key names (e.g., "Property Type", "Number of Bedrooms", "Monthly Rent")
3. Keep values concise but complete
4. DO NOT include fields where information is missing or unclear
5. DO NOT add "Not specified" or similar placeholder values
6. Organize information logically for a %s listing
7. Return ONLY the JSON object, nothing else`,
		in.Title, in.Category, sub, in.Description, in.Category)
}

// ChatLine is one conversation message included in analytics input.
type ChatLine struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// AdSnapshot is the ad-plus-conversation view the analytics prompt is
// built from.
type AdSnapshot struct {
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	SubCategory string     `json:"subCategory"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Location    string     `json:"location"`
	Posted      time.Time  `json:"posted"`
	Views       int64      `json:"views"`
	Chats       []ChatLine `json:"chats"`
}

// AdAnalysis is the structured assessment returned for an ad.
type AdAnalysis struct {
	FraudRisk       string   `json:"fraudRisk"` // low, medium or high
	FraudSignals    []string `json:"fraudSignals"`
	PriceAssessment string   `json:"priceAssessment"`
	Summary         string   `json:"summary"`
}

// AnalyzeAd assesses an ad and its conversations against comparable
// listings in the same category.
func (c *Client) AnalyzeAd(ctx context.Context, mainAd AdSnapshot, related []AdSnapshot) (*AdAnalysis, error) {
	prompt := fmt.Sprintf(`Assess the following classified ad for fraud risk and price plausibility.

Main ad (with its buyer conversations):
%s

Comparable ads in the same category and sub-category:
%s

Return ONLY a JSON object with this exact shape:
{
  "fraudRisk": "low|medium|high",
  "fraudSignals": ["..."],
  "priceAssessment": "...",
  "summary": "..."
}`, mustJSON(mainAd), mustJSON(related))

	raw, err := c.generate(ctx, analyticsSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	var analysis AdAnalysis
	if err := ExtractJSON(raw, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// SearchFilter is a browse predicate translated from natural language.
// Empty fields mean no constraint.
type SearchFilter struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	MaxPrice    *float64 `json:"maxPrice"`
}

// TranslateSearch turns a shopper's natural-language query into a
// structured filter. knownCategories constrains the category the model may
// pick so the result always resolves against reference data.
func (c *Client) TranslateSearch(ctx context.Context, query string, knownCategories []string) (*SearchFilter, error) {
	prompt := fmt.Sprintf(`Translate this search request into filters: %q

Allowed categories (pick at most one, or leave empty): %s

Return ONLY a JSON object with this exact shape:
{"title": "...", "category": "...", "subCategory": "...", "maxPrice": null}`,
		query, strings.Join(knownCategories, ", "))

	raw, err := c.generate(ctx, searchSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	var filter SearchFilter
	if err := ExtractJSON(raw, &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

// mustJSON renders v for prompt embedding; prompt construction never fails
// on marshalable inputs, so errors collapse to an empty object.
func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
