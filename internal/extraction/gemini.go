package extraction

import (
	"context"
	"time"

	"google.golang.org/genai"
)

const receiptPrompt = `You are a receipt understanding engine for photographed retail receipts.

Task:
- Read the attached receipt document.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).
- Output a single JSON object.

The object must have these fields:
- "vendor": {"text": string, "confidence": number 0-100} or null
- "total": {"value": number, "confidence": number 0-100} or null
- "subtotal": {"value": number, "confidence": number 0-100} or null
- "tax": {"value": number, "confidence": number 0-100} or null
- "date": {"text": string "YYYY-MM-DD", "confidence": number 0-100} or null
- "items": array of {"description": string, "quantity": number or null, "unit_price": number or null, "amount": number or null, "confidence": number 0-100}
- "transcript": string with every line of text you can read on the receipt

Rules:
- Confidence reflects how certain you are about each individual field.
- If a field cannot be read at all, set it to null rather than guessing.
- Amounts are plain numbers without currency symbols.
- If the document is not a receipt, set every field to null and items to [].

Return ONLY valid raw JSON.
Do NOT wrap the response in code fences.
Do NOT use ` + "```json" + ` or any Markdown.
Output must begin with "{" and end with "}".`

// GeminiExtractor implements Extractor on top of the Gemini vision API.
type GeminiExtractor struct {
	model     string
	threshold float64
	timeout   time.Duration
}

// NewGeminiExtractor creates an extractor. threshold is the field acceptance
// threshold as a percentage; fields scored below it are treated as absent.
func NewGeminiExtractor(model string, threshold float64, timeout time.Duration) *GeminiExtractor {
	return &GeminiExtractor{
		model:     model,
		threshold: threshold,
		timeout:   timeout,
	}
}

// Extract sends the document to Gemini and decodes the structured result.
func (g *GeminiExtractor) Extract(ctx context.Context, doc Document) (RawExtraction, error) {
	if len(doc.Bytes) == 0 {
		return RawExtraction{}, &Error{Reason: "empty document"}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return RawExtraction{}, &Error{Reason: "create genai client", Err: err}
	}

	mimeType := doc.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     doc.Bytes,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return RawExtraction{}, &Error{Reason: "generate content", Err: err}
	}

	rawText := resp.Text()
	if rawText == "" {
		return RawExtraction{}, &Error{Reason: "empty model response"}
	}

	raw, err := decodeExtraction(rawText)
	if err != nil {
		return RawExtraction{}, &Error{Reason: "decode model output", Err: err}
	}

	return applyAcceptThreshold(raw, g.threshold), nil
}

// applyAcceptThreshold drops every field whose confidence is below min.
// A dropped field is absent, not zero; the transcript is always kept.
func applyAcceptThreshold(raw RawExtraction, min float64) RawExtraction {
	out := RawExtraction{Transcript: raw.Transcript}

	if raw.Merchant != nil && raw.Merchant.Confidence >= min {
		out.Merchant = raw.Merchant
	}
	if raw.Total != nil && raw.Total.Confidence >= min {
		out.Total = raw.Total
	}
	if raw.Subtotal != nil && raw.Subtotal.Confidence >= min {
		out.Subtotal = raw.Subtotal
	}
	if raw.Tax != nil && raw.Tax.Confidence >= min {
		out.Tax = raw.Tax
	}
	if raw.Date != nil && raw.Date.Confidence >= min {
		out.Date = raw.Date
	}
	for _, item := range raw.Items {
		if item.Confidence >= min {
			out.Items = append(out.Items, item)
		}
	}

	return out
}
