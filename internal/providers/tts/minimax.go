package tts

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"worker/internal/domain"
	"worker/internal/infra"
)

const (
	defaultBaseURL = "https://api.minimax.io/v1"
	defaultModel   = "speech-2.5-hd-preview"
	defaultTimeout = 60 * time.Second

	// maxTextLength is the provider's practical input limit; longer text is
	// truncated before synthesis.
	maxTextLength = 2000

	maxAttempts  = 3
	baseDelay    = 4 * time.Second
	maxDelay     = 60 * time.Second
	sampleRate   = 32000
	bitrate      = 128000
	audioFormat  = "mp3"
	audioChannel = 1
)

// errHard marks provider-level failures that must not be retried, such as a
// non-zero status embedded in a 200 response.
var errHard = errors.New("tts: hard failure")

// Options configures the MiniMax text-to-speech client.
type Options struct {
	APIKey         string
	VoiceID        string
	GroupID        string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs t2a_v2 synthesis calls against the MiniMax API.
type Client struct {
	apiKey     string
	voiceID    string
	groupID    string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     infra.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

type synthesisRequest struct {
	Model        string       `json:"model"`
	Text         string       `json:"text"`
	Stream       bool         `json:"stream"`
	VoiceSetting voiceSetting `json:"voice_setting"`
	AudioSetting audioSetting `json:"audio_setting"`
}

type voiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Volume  float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
}

type audioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
	Channel    int    `json:"channel"`
}

type synthesisResponse struct {
	Data struct {
		Audio string `json:"audio"`
	} `json:"data"`
	BaseResp struct {
		StatusCode int    `json:"status_code"`
		StatusMsg  string `json:"status_msg"`
	} `json:"base_resp"`
}

// NewClient constructs a client. Credentials may be empty; callers must check
// Configured before synthesizing.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := infra.Logger(zerolog.New(io.Discard))
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		voiceID:    strings.TrimSpace(opts.VoiceID),
		groupID:    strings.TrimSpace(opts.GroupID),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

// Configured reports whether api key, voice id and group id are all present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.voiceID != "" && c.groupID != ""
}

// Synthesize converts text to MP3 bytes. Transport failures and non-2xx
// statuses are retried with exponential backoff; provider error payloads and
// undecodable audio are terminal.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, domain.Ef(domain.KindValidation, "tts not configured: api key, voice id and group id are required")
	}
	if runes := []rune(text); len(runes) > maxTextLength {
		text = string(runes[:maxTextLength])
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		audio, err := c.synthesizeOnce(ctx, text)
		if err == nil {
			return audio, nil
		}
		if errors.Is(err, errHard) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		if attempt < maxAttempts {
			delay := backoffDelay(attempt)
			c.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("tts: synthesis failed, retrying")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("tts: synthesis failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) synthesizeOnce(ctx context.Context, text string) ([]byte, error) {
	payload := synthesisRequest{
		Model:  c.model,
		Text:   text,
		Stream: false,
		VoiceSetting: voiceSetting{
			VoiceID: c.voiceID,
			Speed:   1,
			Volume:  1,
			Pitch:   0,
		},
		AudioSetting: audioSetting{
			SampleRate: sampleRate,
			Bitrate:    bitrate,
			Format:     audioFormat,
			Channel:    audioChannel,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", errHard, err)
	}
	endpoint := fmt.Sprintf("%s/t2a_v2?GroupId=%s", c.baseURL, c.groupID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", errHard, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.Ef(domain.KindProvider, "tts request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.Ef(domain.KindProvider, "tts status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out synthesisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", errHard, err)
	}
	if out.BaseResp.StatusCode != 0 {
		return nil, fmt.Errorf("%w: provider status %d: %s", errHard, out.BaseResp.StatusCode, out.BaseResp.StatusMsg)
	}
	if out.Data.Audio == "" {
		return nil, fmt.Errorf("%w: no audio data in response", errHard)
	}
	audio, err := hex.DecodeString(out.Data.Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: hex decode audio: %v", errHard, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", errHard)
	}
	c.logger.Info().Int("audio_bytes", len(audio)).Msg("tts: synthesis ok")
	return audio, nil
}

// EstimateDuration approximates the spoken length of text in seconds,
// assuming roughly 150 words per minute at five characters per word.
func EstimateDuration(text string) int {
	words := float64(len([]rune(text))) / 5
	return int(words / 150 * 60)
}

func backoffDelay(attempt int) time.Duration {
	delay := baseDelay << (attempt - 1)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
