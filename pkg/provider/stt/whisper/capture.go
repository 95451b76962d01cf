package whisper

import (
	"context"
	"errors"
	"io"
	"time"
)

// captureConfig bounds one PCM capture from an audio source.
type captureConfig struct {
	sampleRate         int
	channels           int
	window             time.Duration
	phraseLimit        time.Duration
	silenceThresholdMs int
	rmsThreshold       float64
}

// capture reads 16-bit PCM from src until the window elapses, the phrase
// limit is reached, trailing silence after speech exceeds the silence
// threshold, or src reaches EOF. It returns the captured PCM, whether any
// chunk exceeded the RMS speech threshold, and the captured audio duration.
//
// src is read in ~100 ms chunks on a separate goroutine so that a stalled
// source cannot block past the window. The reader goroutine exits at the
// next chunk boundary after the window closes; sources must tolerate one
// trailing short read.
func capture(ctx context.Context, src io.Reader, cfg captureConfig) ([]byte, bool, time.Duration, error) {
	bytesPerMs := cfg.sampleRate * cfg.channels * 2 / 1000
	if bytesPerMs <= 0 {
		bytesPerMs = 32 // 16 kHz mono 16-bit
	}
	chunkBytes := bytesPerMs * 100
	maxBytes := int(cfg.phraseLimit.Milliseconds()) * bytesPerMs

	type readResult struct {
		chunk []byte
		err   error
	}
	chunks := make(chan readResult, 8)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			buf := make([]byte, chunkBytes)
			n, err := io.ReadFull(src, buf)
			select {
			case chunks <- readResult{chunk: buf[:n], err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	deadline := time.NewTimer(cfg.window)
	defer deadline.Stop()

	var (
		pcm       []byte
		hadSpeech bool
		silenceMs int
	)

	audioDur := func() time.Duration {
		return time.Duration(len(pcm)/bytesPerMs) * time.Millisecond
	}

	for {
		select {
		case <-ctx.Done():
			return pcm, hadSpeech, audioDur(), ctx.Err()

		case <-deadline.C:
			return pcm, hadSpeech, audioDur(), nil

		case r := <-chunks:
			if len(r.chunk) > 0 {
				pcm = append(pcm, r.chunk...)
				chunkMs := len(r.chunk) / bytesPerMs
				if computeRMS(r.chunk) >= cfg.rmsThreshold {
					hadSpeech = true
					silenceMs = 0
				} else if hadSpeech {
					silenceMs += chunkMs
				}
			}
			if r.err != nil {
				if errors.Is(r.err, io.EOF) || errors.Is(r.err, io.ErrUnexpectedEOF) {
					return pcm, hadSpeech, audioDur(), nil
				}
				return pcm, hadSpeech, audioDur(), r.err
			}
			if hadSpeech && silenceMs >= cfg.silenceThresholdMs {
				return pcm, hadSpeech, audioDur(), nil
			}
			if len(pcm) >= maxBytes {
				return pcm, hadSpeech, audioDur(), nil
			}
		}
	}
}
