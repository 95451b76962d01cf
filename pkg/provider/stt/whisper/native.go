// This file contains the NativeProvider implementation backed by the
// whisper.cpp CGO bindings. The whisper.cpp static library (libwhisper.a)
// and headers (whisper.h) must be available at link time via LIBRARY_PATH
// and C_INCLUDE_PATH environment variables.

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/caseclockapp/caseclock-mvp/pkg/provider/stt"
)

// Compile-time assertion that NativeProvider satisfies stt.Provider.
var _ stt.Provider = (*NativeProvider)(nil)

// NativeProvider implements stt.Provider using the whisper.cpp Go bindings
// (CGO), eliminating HTTP overhead entirely. The model is loaded once at
// construction and shared across all Listen calls.
type NativeProvider struct {
	model              whisperlib.Model
	source             io.Reader
	language           string
	sampleRate         int
	channels           int
	silenceThresholdMs int
}

// NativeOption is a functional option for configuring a NativeProvider.
type NativeOption func(*NativeProvider)

// WithNativeLanguage sets the BCP-47 language code for transcription
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithNativeLanguage(lang string) NativeOption {
	return func(p *NativeProvider) { p.language = lang }
}

// WithNativeSampleRate sets the audio sample rate in Hz. This must match
// the PCM data read from the source. Defaults to 16000, which is also what
// whisper.cpp expects; other rates require a resampling source.
func WithNativeSampleRate(rate int) NativeOption {
	return func(p *NativeProvider) { p.sampleRate = rate }
}

// WithNativeSilenceThresholdMs sets the consecutive-silence duration (ms)
// after speech that ends a capture early. Defaults to 500 ms.
func WithNativeSilenceThresholdMs(ms int) NativeOption {
	return func(p *NativeProvider) { p.silenceThresholdMs = ms }
}

// NewNative creates a NativeProvider that loads the whisper.cpp model from
// the given file path and reads PCM audio from source. The caller must call
// Close when the provider is no longer needed.
func NewNative(modelPath string, source io.Reader, opts ...NativeOption) (*NativeProvider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	if source == nil {
		return nil, errors.New("whisper: source must not be nil")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &NativeProvider{
		model:              model,
		source:             source,
		language:           defaultLanguage,
		sampleRate:         defaultSampleRate,
		channels:           1,
		silenceThresholdMs: defaultSilenceThresholdMs,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model. Must be called when the provider is no
// longer needed.
func (p *NativeProvider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Listen implements stt.Provider. It captures one window of audio from the
// source and runs in-process inference over it.
func (p *NativeProvider) Listen(ctx context.Context, cfg stt.ListenConfig) (stt.Result, error) {
	window := cfg.Window
	if window <= 0 {
		window = defaultWindow
	}
	phraseLimit := cfg.PhraseLimit
	if phraseLimit <= 0 {
		phraseLimit = defaultPhraseLimit
	}

	pcm, hadSpeech, dur, err := capture(ctx, p.source, captureConfig{
		sampleRate:         p.sampleRate,
		channels:           p.channels,
		window:             window,
		phraseLimit:        phraseLimit,
		silenceThresholdMs: p.silenceThresholdMs,
		rmsThreshold:       defaultRMSThreshold,
	})
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

	lang := cfg.Language
	if lang == "" {
		lang = p.language
	}

	text, err := p.infer(pcm, lang)
	if err != nil {
		return stt.Result{Outcome: stt.OutcomeServiceError, AudioDuration: dur}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return stt.Result{Outcome: stt.OutcomeUnintelligible, AudioDuration: dur}, nil
	}
	return stt.Result{Text: text, Outcome: stt.OutcomeTranscript, AudioDuration: dur}, nil
}

// infer creates a fresh whisper.cpp context from the shared model and runs
// batch transcription over the captured utterance.
func (p *NativeProvider) infer(pcm []byte, language string) (string, error) {
	wctx, err := p.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: new context: %w", err)
	}
	if err := wctx.SetLanguage(language); err != nil {
		return "", fmt.Errorf("whisper: set language %q: %w", language, err)
	}

	samples := pcmToFloat32(pcm)
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process: %w", err)
	}

	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSpace(segment.Text))
	}
	return sb.String(), nil
}
