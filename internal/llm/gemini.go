package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient generates post-mortems through the generativelanguage REST API.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient constructs a Gemini generation client.
func NewGeminiClient(baseURL, apiKey string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeneratePostMortem performs one generateContent call and decodes the
// structured report from the first candidate.
func (c *GeminiClient) GeneratePostMortem(ctx context.Context, facts models.FactBundle, selection models.ModelSelection) (models.PostMortem, error) {
	prompt := BuildPrompt(facts, selection)

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini", "encode request", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s", c.baseURL, selection.Model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini", "call generation backend", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini",
			fmt.Sprintf("backend returned status %d", resp.StatusCode), fmt.Errorf("%s", truncate(raw, 512)))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini", "decode response", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini", "no candidates in response", nil)
	}

	report, err := ParseReport(decoded.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.Gemini", "malformed report", err)
	}
	return report, nil
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
