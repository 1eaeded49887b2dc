// Package gemini implements creator-name extraction with Google
// Gemini for credit statements too messy for the rule-based parser.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

const prompt = `The following text is a film or television credit fragment.
List every personal name it contains, one name per line, with no other text.
If it contains no personal names, return an empty response.

Text: %s`

// Extractor is a PersonExtractor backed by Gemini.
type Extractor struct {
	Model string
}

// New returns a Gemini extractor using the given model, or the
// default when empty.
func New(model string) *Extractor {
	if model == "" {
		model = defaultModel
	}
	return &Extractor{Model: model}
}

// ExtractPersons asks Gemini for the personal names in a credit
// fragment. Requires GEMINI_API_KEY.
func (e *Extractor) ExtractPersons(ctx context.Context, text string) ([]string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(e.Model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(prompt, text)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from Gemini")
	}

	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response format from Gemini")
	}

	return parseNames(string(txt)), nil
}

func parseNames(response string) []string {
	var names []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.Trim(line, " -*.")
		if line != "" {
			names = append(names, line)
		}
	}
	return names
}
