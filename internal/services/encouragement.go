package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// EncouragementService generates the one-line pep talk in digest emails.
// Without an API key it falls back to a fixed rotation, so email delivery
// never depends on the model being reachable.
type EncouragementService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var fallbackLines = []string{
	"Consistency beats intensity. One problem at a time.",
	"Every revisit makes the next interview easier.",
	"Small daily reps are how recall sticks.",
	"You've solved these before. Prove it again.",
}

func NewEncouragementService(apiKey string) (*EncouragementService, error) {
	if apiKey == "" {
		log.Println("⚠ Encouragement service running without Gemini (static lines)")
		return &EncouragementService{}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.9)

	return &EncouragementService{client: client, model: model}, nil
}

func (s *EncouragementService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Line returns a single short encouragement sentence for the digest.
func (s *EncouragementService) Line(ctx context.Context, name string, remaining int) string {
	if s.model == nil {
		return fallbackLines[remaining%len(fallbackLines)]
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Write one short, warm, non-cheesy sentence encouraging %s to review %d coding problems today. No emoji, no quotes.",
		name, remaining,
	)
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fallbackLines[remaining%len(fallbackLines)]
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	line := strings.TrimSpace(sb.String())
	if line == "" {
		return fallbackLines[remaining%len(fallbackLines)]
	}
	return line
}
