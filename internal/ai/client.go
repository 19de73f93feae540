package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/philosophercode/travelback-sub000/internal/config"
)

// Client talks to an OpenAI-compatible chat-completions endpoint and is the
// single boundary where model output is validated into typed values.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.AIBaseURL, "/"),
		apiKey:     cfg.AIAPIKey,
		model:      cfg.AIModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) chat(ctx context.Context, content any) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Temperature: 0.3,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", eris.Wrap(err, "marshaling chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", eris.Wrap(err, "creating chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "calling chat API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "reading chat response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("chat API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", eris.Wrap(err, "decoding chat response")
	}
	if parsed.Error != nil {
		return "", eris.Errorf("chat API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", eris.New("chat API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) chatVision(ctx context.Context, prompt string, image []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(image)
	content := []contentPart{
		{Type: "text", Text: prompt},
		{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + encoded}},
	}
	return c.chat(ctx, content)
}

// stripFences removes a surrounding markdown code fence, which models add
// even when asked for bare JSON.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}

func decodeJSON(text string, target any) error {
	if err := json.Unmarshal([]byte(stripFences(text)), target); err != nil {
		return eris.Wrap(err, "parsing model output as JSON")
	}
	return nil
}
