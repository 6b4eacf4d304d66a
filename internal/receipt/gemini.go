package receipt

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const geminiPrompt = `Read this receipt. Answer with JSON only, shaped as
{"items": [{"name": string, "price": number}], "tax": number, "tip": number}.
List every purchased line with its total price. Use 0 for tax or tip when the
receipt shows none. Do not include subtotal or total lines as items.`

// GeminiParser asks a Gemini model to read receipts.
type GeminiParser struct {
	client *genai.Client
	model  string
}

// NewGeminiParser creates a parser using the Gemini API with apiKey.
func NewGeminiParser(ctx context.Context, apiKey, model string) (*GeminiParser, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiParser{client: client, model: model}, nil
}

// Parse sends the receipt image to the model and decodes its JSON answer.
func (p *GeminiParser) Parse(ctx context.Context, file []byte, mimeType string) (*Receipt, error) {
	if len(file) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedReceipt)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: file}},
			{Text: geminiPrompt},
		},
	}}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty answer from %s", ErrUnavailable, p.model)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return Decode([]byte(text.String()), DefaultPaths)
}
