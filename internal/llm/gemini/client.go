package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"joblink/api/internal/llm"
)

// systemInstruction pins the output contract: the model must answer with
// nothing but a JSON document holding these four sections.
const systemInstruction = `You are a resume parser. The user message is the plain text of a resume.
Respond with a single JSON object and nothing else, using exactly this shape:
{
  "personal":   {"name": string, "email": string, "phone": string, "location": string},
  "experience": [{"company": string, "title": string, "startDate": string, "endDate": string, "description": string}],
  "education":  [{"institution": string, "degree": string, "fieldOfStudy": string, "startYear": number, "endYear": number}],
  "projects":   [{"name": string, "description": string, "technologies": [string]}]
}
Use empty strings or empty arrays for anything the resume does not state. Do not invent facts.`

// requiredSections must all appear in the model's JSON before it is
// forwarded to the client.
var requiredSections = []string{"personal", "experience", "education", "projects"}

// Client parses resumes through the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(apiKey, model string) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{client: client, model: model}, nil
}

// ParseResume sends the resume text with the pinned instruction and
// validates the completion is JSON carrying every promised section
// before returning it.
func (c *Client) ParseResume(ctx context.Context, resumeText string, requestID string) (*llm.ParsedResume, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(resumeText),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemInstruction}},
			},
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate completion",
			Err:      err,
		}
	}
	if result == nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	if err := validateSchema(text); err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Model output does not match the resume schema",
			Err:      err,
		}
	}

	return &llm.ParsedResume{
		Raw:       text,
		RequestID: requestID,
		Provider:  "gemini",
		Model:     c.model,
	}, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}

// validateSchema fails closed when the completion is not a JSON object
// containing every advertised top-level section.
func validateSchema(text string) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &doc); err != nil {
		return err
	}
	var missing []string
	for _, section := range requiredSections {
		if _, ok := doc[section]; !ok {
			missing = append(missing, section)
		}
	}
	if len(missing) > 0 {
		return &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "missing sections: " + strings.Join(missing, ", "),
		}
	}
	return nil
}
