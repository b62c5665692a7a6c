package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/watchfloor/internal/logging"
)

const (
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "llama3.2"

	defaultOllamaTimeout = 120 * time.Second
	maxErrorBody         = 512
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// OllamaProvider talks to a local Ollama server over /api/chat.
type OllamaProvider struct {
	chatURL string
	model   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewOllamaProvider creates an Ollama provider. Empty endpoint and model
// take the defaults; rps <= 0 disables rate limiting.
func NewOllamaProvider(endpoint, model string, timeout time.Duration, rps float64) *OllamaProvider {
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = defaultOllamaTimeout
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Every(time.Duration(float64(time.Second) / rps))
	}
	return &OllamaProvider{
		chatURL: strings.TrimRight(endpoint, "/") + "/api/chat",
		model:   model,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (o *OllamaProvider) Name() string { return "ollama" }

// Generate sends one non-streaming chat turn.
func (o *OllamaProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limiter: %w", err)
	}

	raw, err := o.post(ctx, o.chatRequest(req))
	if err != nil {
		return Response{}, err
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, fmt.Errorf("ollama: decode reply: %w", err)
	}
	logging.Debug("ollama reply", "model", out.Model, "chars", len(out.Message.Content), "done", out.Done)

	return Response{Content: out.Message.Content, Model: out.Model, RawResponse: string(raw)}, nil
}

func (o *OllamaProvider) chatRequest(req Request) chatRequest {
	cr := chatRequest{Model: o.model}
	if req.SystemPrompt != "" {
		cr.Messages = append(cr.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	cr.Messages = append(cr.Messages, chatMessage{Role: "user", Content: req.UserPrompt})
	if req.JSON {
		cr.Format = "json"
	}
	if req.MaxTokens > 0 {
		cr.Options = &chatOptions{NumPredict: req.MaxTokens}
	}
	return cr
}

// post returns the body of a 200 reply.
func (o *OllamaProvider) post(ctx context.Context, cr chatRequest) ([]byte, error) {
	payload, err := json.Marshal(cr)
	if err != nil {
		return nil, fmt.Errorf("ollama: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.chatURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := o.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("ollama: read reply: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		msg := string(raw)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		logging.Warn("ollama error", "status", res.StatusCode, "model", o.model)
		return nil, fmt.Errorf("API error (status %d): %s", res.StatusCode, msg)
	}
	return raw, nil
}
