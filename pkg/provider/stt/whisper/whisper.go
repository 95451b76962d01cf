// Package whisper provides whisper.cpp-backed stt providers.
//
// Two implementations are available:
//
//   - [Provider] talks to a running whisper-server binary (REST API at
//     POST /inference). No CGO required; the server can live on another host.
//   - [NativeProvider] links whisper.cpp directly via its Go bindings and
//     runs inference in-process.
//
// Both capture one bounded window of PCM audio from an [io.Reader] supplied
// at construction, apply an energy-based silence gate so a quiet room ends
// the window early, and submit the captured utterance as a single batch
// inference.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080", micReader,
//	    whisper.WithLanguage("en"),
//	)
//	res, err := p.Listen(ctx, stt.ListenConfig{Window: 10 * time.Second})
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/caseclockapp/caseclock-mvp/pkg/provider/stt"
)

const (
	// defaultRMSThreshold is the root-mean-square energy level (in 16-bit
	// PCM units) below which audio is considered silent. The maximum for
	// 16-bit audio is 32 767; 300 corresponds to near-silence.
	defaultRMSThreshold = 300.0

	defaultLanguage           = "en"
	defaultSampleRate         = 16000
	defaultSilenceThresholdMs = 500
	defaultWindow             = 10 * time.Second
	defaultPhraseLimit        = 10 * time.Second
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base.en", "small"). When empty the server uses whichever model it
// was started with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code sent to the whisper.cpp server
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithSampleRate sets the audio sample rate in Hz. This must match the
// actual sample rate of the PCM data read from the source. Defaults to 16000.
func WithSampleRate(rate int) Option {
	return func(p *Provider) {
		p.sampleRate = rate
	}
}

// WithChannels sets the channel count of the source PCM. Defaults to 1.
func WithChannels(ch int) Option {
	return func(p *Provider) {
		p.channels = ch
	}
}

// WithSilenceThresholdMs sets the consecutive-silence duration (in
// milliseconds) after speech that ends the capture early. Defaults to 500 ms.
func WithSilenceThresholdMs(ms int) Option {
	return func(p *Provider) {
		p.silenceThresholdMs = ms
	}
}

// Provider implements stt.Provider backed by a whisper.cpp HTTP server.
// Safe for concurrent use; concurrent Listen calls share the source reader,
// so callers normally serialise them.
type Provider struct {
	serverURL          string
	source             io.Reader
	model              string
	language           string
	sampleRate         int
	channels           int
	silenceThresholdMs int
	httpClient         *http.Client
}

// New creates a Provider that reads PCM audio from source and submits it to
// the whisper.cpp HTTP server at serverURL (e.g., "http://localhost:8080").
// serverURL and source must be non-nil/non-empty.
func New(serverURL string, source io.Reader, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	if source == nil {
		return nil, errors.New("whisper: source must not be nil")
	}
	p := &Provider{
		serverURL:          serverURL,
		source:             source,
		language:           defaultLanguage,
		sampleRate:         defaultSampleRate,
		channels:           1,
		silenceThresholdMs: defaultSilenceThresholdMs,
		httpClient:         &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Listen implements stt.Provider. It captures one window of audio from the
// source and submits it to the whisper.cpp server for batch inference.
func (p *Provider) Listen(ctx context.Context, cfg stt.ListenConfig) (stt.Result, error) {
	pcm, hadSpeech, dur, err := p.captureWindow(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return stt.Result{Outcome: stt.OutcomeNoSpeech, AudioDuration: dur}, err
		}
		return stt.Result{Outcome: stt.OutcomeServiceError, AudioDuration: dur},
			fmt.Errorf("whisper: capture: %w", err)
	}
	if !hadSpeech || len(pcm) == 0 {
		return stt.Result{Outcome: stt.OutcomeNoSpeech, AudioDuration: dur}, nil
	}

	text, err := p.infer(ctx, pcm, cfg.Language)
	if err != nil {
		return stt.Result{Outcome: stt.OutcomeServiceError, AudioDuration: dur}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return stt.Result{Outcome: stt.OutcomeUnintelligible, AudioDuration: dur}, nil
	}
	return stt.Result{Text: text, Outcome: stt.OutcomeTranscript, AudioDuration: dur}, nil
}

// captureWindow reads one bounded capture from the source using the provider
// defaults for any zero field in cfg.
func (p *Provider) captureWindow(ctx context.Context, cfg stt.ListenConfig) ([]byte, bool, time.Duration, error) {
	window := cfg.Window
	if window <= 0 {
		window = defaultWindow
	}
	phraseLimit := cfg.PhraseLimit
	if phraseLimit <= 0 {
		phraseLimit = defaultPhraseLimit
	}
	return capture(ctx, p.source, captureConfig{
		sampleRate:         p.sampleRate,
		channels:           p.channels,
		window:             window,
		phraseLimit:        phraseLimit,
		silenceThresholdMs: p.silenceThresholdMs,
		rmsThreshold:       defaultRMSThreshold,
	})
}

// inferenceResponse is the JSON body returned by whisper-server's
// POST /inference endpoint.
type inferenceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// infer encodes pcm as WAV and posts it to the whisper.cpp server.
func (p *Provider) infer(ctx context.Context, pcm []byte, language string) (string, error) {
	lang := language
	if lang == "" {
		lang = p.language
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(encodeWAV(pcm, p.sampleRate, p.channels)); err != nil {
		return "", fmt.Errorf("whisper: write wav: %w", err)
	}
	if err := mw.WriteField("language", lang); err != nil {
		return "", fmt.Errorf("whisper: write language field: %w", err)
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return "", fmt.Errorf("whisper: write model field: %w", err)
		}
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("whisper: write response_format field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("whisper: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: post inference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("whisper: server returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("whisper: decode response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("whisper: inference error: %s", decoded.Error)
	}
	return decoded.Text, nil
}
