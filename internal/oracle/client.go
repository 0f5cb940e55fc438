// Package oracle wraps the Gemini API behind the two extraction calls the
// intake paths need: free-form text to a strict JSON record, and a receipt
// image to a labeled-line analysis. Responses pass through the extract
// parsers, so the model never talks to the ledger directly.
package oracle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/extract"
	"github.com/dvloznov/ledgerbot/internal/retry"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Client is a thin session around the GenAI SDK. Safe for concurrent use.
type Client struct {
	genai  *genai.Client
	model  string
	policy retry.Policy
	log    zerolog.Logger
}

// NewClient builds a Client. The API key comes from the environment
// (GEMINI_API_KEY) via the SDK's own resolution.
func NewClient(ctx context.Context, model string, log zerolog.Logger) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: create genai client: %w", err)
	}

	return &Client{
		genai:  gc,
		model:  model,
		policy: retry.DefaultPolicy(),
		log:    log,
	}, nil
}

// ExtractFromText asks the model to turn a natural-language message into a
// validated record. Malformed model output surfaces as an ExtractionError,
// never as a half-built record.
func (c *Client) ExtractFromText(ctx context.Context, text string) (domain.FinancialRecord, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: textPrompt + text}},
	}}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.1),
	}

	raw, err := c.generate(ctx, contents, config)
	if err != nil {
		return domain.FinancialRecord{}, extract.WrapError("model call failed", err)
	}

	c.log.Debug().Int("response_len", len(raw)).Msg("Oracle text extraction response received")
	return extract.ParseOracleJSON(cleanModelJSON(raw))
}

// AnalyzeImage sends a receipt image to the model and parses the labeled-line
// analysis. A nil record with a nil error means the model could read the
// image but found no usable transaction; the analysis text is returned either
// way so callers can show the user what the model saw.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*domain.FinancialRecord, string, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: visionPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}

	raw, err := c.generate(ctx, contents, nil)
	if err != nil {
		return nil, "", extract.WrapError("model call failed", err)
	}

	rec, err := extract.ParseVisionAnalysis(raw)
	if err != nil {
		c.log.Info().Err(err).Msg("Image analysis did not yield a record")
		return nil, raw, nil
	}
	return rec, raw, nil
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	var raw string
	err := retry.Do(ctx, c.policy, retry.Transient, func() error {
		resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return err
		}
		raw = resp.Text()
		if raw == "" {
			return fmt.Errorf("empty response from model %s", c.model)
		}
		return nil
	})
	return raw, err
}
