// Package copywriter talks to an OpenAI-compatible chat completions
// endpoint to produce persuasive offer copy. The rest of the system
// treats it as optional: every caller has deterministic fallback text
// and degrades to it when this client errors or is not configured.
package copywriter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/uprez/upgrade-engine/internal/model"
)

const defaultModel = "gpt-4o-mini"

// Client calls the chat completions API with a JSON-object response
// format and decodes the result into model.OfferCopy.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewFromEnv builds a Client from OPENAI_API_KEY, OPENAI_BASE_URL and
// OPENAI_MODEL. It returns nil when no API key is set, which callers
// treat as "copywriting disabled".
func NewFromEnv() *Client {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil
	}
	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	mdl := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if mdl == "" {
		mdl = defaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   mdl,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You are a hospitality copywriter for a property management company. ` +
	`You write short, warm, specific upgrade pitches for guests with an existing booking. ` +
	`Never invent amenities that are not listed. Respond with a single JSON object with keys: ` +
	`"subject", "email_title", "email_content", "email_selling_points" (array of strings), ` +
	`"email_cta", "landing_hero", "landing_summary", "diff_bullets" (array of strings).`

// GenerateCopy produces an OfferCopy for one candidate property. The
// caller supplies everything the model may reference so the prompt is
// self-contained.
func (c *Client) GenerateCopy(ctx context.Context, original, candidate model.Property, pricing model.PricingDetails, booking model.Booking, diffs []string) (*model.OfferCopy, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Guest %s booked %q (%s, %d bed / %d bath) for %d night(s) at %.2f %s per night.\n",
		booking.GuestName, original.Name, original.Location, original.Beds, original.Baths,
		pricing.Nights, pricing.FromADR, pricing.Currency)
	fmt.Fprintf(&b, "Offer an upgrade to %q (%s, %d bed / %d bath) at %.2f %s per night instead of the list rate of %.2f.\n",
		candidate.Name, candidate.Location, candidate.Beds, candidate.Baths,
		pricing.OfferADR, pricing.Currency, pricing.ToADRList)
	fmt.Fprintf(&b, "The upgrade costs %.2f %s extra in total (a %.0f%% discount off list).\n",
		pricing.RevenueLift, pricing.Currency, pricing.DiscountPercent*100)
	if len(diffs) > 0 {
		fmt.Fprintf(&b, "Improvements over the booked property: %s.\n", strings.Join(diffs, "; "))
	}
	if len(candidate.Amenities) > 0 {
		fmt.Fprintf(&b, "Amenities at the upgrade property: %s.\n", strings.Join(candidate.Amenities, ", "))
	}
	b.WriteString("Write the upgrade pitch now.")

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: b.String()},
		},
		Temperature: 0.7,
	}
	req.ResponseFormat.Type = "json_object"

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(req); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("copywriter http %d: %s", resp.StatusCode, truncate(string(raw), 300))
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, fmt.Errorf("copywriter decode: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("copywriter returned no choices")
	}

	var out model.OfferCopy
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("copywriter payload: %w", err)
	}
	if out.Subject == "" && out.LandingHero == "" {
		return nil, fmt.Errorf("copywriter payload empty")
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
