package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/recapd/recapd/errors"
	"github.com/recapd/recapd/pkg/config"
)

// EngineClient is a minimal client for the local transcription/LLM
// engine. The engine is opaque: this client only knows the HTTP
// contract, never the models behind it.
type EngineClient struct {
	baseURL string
	// transcription gets its own client because large audio takes
	// minutes; summarization and chat each carry their own bound
	transcribeClient *http.Client
	client           *http.Client
	chatClient       *http.Client
}

// NewEngineClient creates an engine client using the provided config
func NewEngineClient(cfg *config.EngineConfig) *EngineClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &EngineClient{
		baseURL:          base,
		transcribeClient: &http.Client{Timeout: cfg.TranscribeTimeout},
		client:           &http.Client{Timeout: cfg.SummarizeTimeout},
		chatClient:       &http.Client{Timeout: cfg.ChatTimeout},
	}
}

// TranscribeRequest is the payload for /transcribe
type TranscribeRequest struct {
	RecordingIdentity string `json:"recordingIdentity"`
	Force             bool   `json:"force,omitempty"`
}

// SpeakerSegmentPayload is one diarized interval in a transcribe response
type SpeakerSegmentPayload struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// TranscribeResponse is the engine's transcription result
type TranscribeResponse struct {
	Transcript      string                  `json:"transcript"`
	SpeakerSegments []SpeakerSegmentPayload `json:"speaker_segments,omitempty"`
}

// SummarizeRequest is the payload for /summarize. SessionID is freshly
// generated per call so the engine's conversational memory never treats
// a second summarization of similar content as already answered.
type SummarizeRequest struct {
	Transcript        string `json:"transcript"`
	RecordingIdentity string `json:"recordingIdentity"`
	SessionID         string `json:"sessionId,omitempty"`
}

// SummarizeResponse is the engine's summary result
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// DailySummarizeRequest is the payload for /daily_summarize
type DailySummarizeRequest struct {
	Transcripts []string `json:"transcripts"`
	DateLabel   string   `json:"dateLabel"`
	SessionID   string   `json:"sessionId,omitempty"`
}

// ChatRequest is the payload for /chat
type ChatRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"sessionId,omitempty"`
	UseGlobalScope bool   `json:"useGlobalScope,omitempty"`
}

// ChatResponse is the engine's chat reply with its session handle
type ChatResponse struct {
	Text      string `json:"text"`
	SessionID string `json:"sessionId"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Transcribe requests transcription of a recording. A transport-level
// failure or timeout is classified as connectivity, which is the only
// classification that triggers the on-device fallback upstream.
func (c *EngineClient) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error) {
	var out TranscribeResponse
	if err := c.post(ctx, c.transcribeClient, "/transcribe", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize requests a summary of a single transcript
func (c *EngineClient) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	var out SummarizeResponse
	if err := c.post(ctx, c.client, "/summarize", req, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// DailySummarize requests one combined report over several transcripts
func (c *EngineClient) DailySummarize(ctx context.Context, req DailySummarizeRequest) (string, error) {
	var out SummarizeResponse
	if err := c.post(ctx, c.client, "/daily_summarize", req, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Chat sends one conversational turn
func (c *EngineClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.post(ctx, c.chatClient, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the engine's /health endpoint
func (c *EngineClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.ErrConnectivity(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.ErrServer(fmt.Sprintf("engine health returned status %d", resp.StatusCode))
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return errors.ErrDecode(err)
	}
	if out.Status != "ok" {
		return errors.ErrServer(fmt.Sprintf("engine health status %q", out.Status))
	}
	return nil
}

// post sends a JSON request and decodes the response, mapping failures
// onto the application taxonomy. Non-2xx responses carry {error} and
// that string is surfaced verbatim to the caller.
func (c *EngineClient) post(ctx context.Context, client *http.Client, path string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return errors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		// transport failure or timeout: engine unreachable
		return errors.ErrConnectivity(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := decodeErrorMessage(resp.Body)
		if msg == "" {
			msg = fmt.Sprintf("engine returned status %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			return errors.AppError{
				HTTPCode: http.StatusNotFound,
				Code:     errors.ErrorCode_NOT_FOUND,
				Message:  msg,
			}
		}
		return errors.ErrServer(msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.ErrDecode(err)
	}
	return nil
}

func decodeErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil {
		return ""
	}
	var ep errorPayload
	if err := json.Unmarshal(body, &ep); err != nil {
		return strings.TrimSpace(string(body))
	}
	return ep.Error
}

// WaitHealthy blocks until the engine answers /health or the wait
// budget is exhausted, backing off between probes. Used only at
// startup; runtime operations never retry on their own.
func (c *EngineClient) WaitHealthy(ctx context.Context, maxWait time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxWait
	return backoff.Retry(func() error {
		return c.Health(ctx)
	}, backoff.WithContext(bo, ctx))
}
