// Package speech records a short utterance and turns it into text with Google
// Cloud Speech-to-Text.
package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"

	"github.com/ayusman/rasoi/internal/upstream"
)

var (
	// ErrUnintelligible means audio was received but no words were recognized.
	ErrUnintelligible = errors.New("could not understand the audio")
	// ErrUnavailable is a transient recognizer or microphone failure.
	ErrUnavailable = upstream.ErrUnavailable
	// ErrPermanent is a non-retryable recognizer failure.
	ErrPermanent = upstream.ErrPermanent
	// ErrNoAudio means the recorder produced nothing.
	ErrNoAudio = errors.New("no audio recorded")
)

// Encodings accepted by the recognizer.
const (
	EncodingLinear16 = "LINEAR16"
	EncodingWebmOpus = "WEBM_OPUS"
	EncodingOggOpus  = "OGG_OPUS"
	EncodingFLAC     = "FLAC"
)

// Audio is an encoded recording.
type Audio struct {
	Data     []byte
	Encoding string
	// SampleRate in Hz. Zero lets the service read it from the container header.
	SampleRate int64
}

// EncodingForContentType maps an upload content type to a recognizer encoding.
func EncodingForContentType(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch ct {
	case "audio/webm":
		return EncodingWebmOpus, true
	case "audio/ogg":
		return EncodingOggOpus, true
	case "audio/flac", "audio/x-flac":
		return EncodingFLAC, true
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/l16":
		return EncodingLinear16, true
	default:
		return "", false
	}
}

// Transcriber converts audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// Recognizer calls the Cloud Speech v1 recognize method.
type Recognizer struct {
	svc      *speechapi.Service
	language string
	timeout  time.Duration
	breaker  *upstream.Breaker
}

// RecognizerOptions configures a Recognizer.
type RecognizerOptions struct {
	APIKey string
	// Endpoint overrides the API base URL; used by tests.
	Endpoint string
	Language string
	Timeout  time.Duration
}

// NewRecognizer creates a Recognizer authenticated with opts.APIKey.
func NewRecognizer(ctx context.Context, opts RecognizerOptions) (*Recognizer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("speech: api key required: %w", ErrPermanent)
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := speechapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("speech: failed to create service: %w", err)
	}

	return &Recognizer{
		svc:      svc,
		language: opts.Language,
		timeout:  opts.Timeout,
		breaker:  upstream.NewBreaker("speech", upstream.BreakerSettings{}),
	}, nil
}

// Transcribe returns the most likely transcript of audio.
func (r *Recognizer) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrNoAudio
	}
	return upstream.Do(r.breaker, func() (string, error) {
		return r.recognize(ctx, audio)
	})
}

func (r *Recognizer) recognize(ctx context.Context, audio Audio) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	encoding := audio.Encoding
	if encoding == "" {
		encoding = EncodingLinear16
	}

	req := &speechapi.RecognizeRequest{
		Config: &speechapi.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: audio.SampleRate,
			LanguageCode:    r.language,
			MaxAlternatives: 1,
		},
		Audio: &speechapi.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio.Data),
		},
	}

	resp, err := r.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", upstream.GoogleError(ctx, "speech", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(result.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", ErrUnintelligible
	}
	return strings.Join(parts, " "), nil
}
