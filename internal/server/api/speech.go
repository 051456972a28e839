package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/recipe"
	"github.com/ayusman/rasoi/internal/speech"
)

// maxAudioBytes bounds uploaded recordings; a few seconds of opus or PCM fits easily.
const maxAudioBytes = 2 << 20

// Listener records from the server microphone and transcribes.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// SpeechHandler turns speech into a dish name.
type SpeechHandler struct {
	transcriber speech.Transcriber
	listener    Listener
}

// NewSpeechHandler creates a SpeechHandler. Either argument may be nil to disable
// the corresponding endpoint.
func NewSpeechHandler(transcriber speech.Transcriber, listener Listener) *SpeechHandler {
	return &SpeechHandler{transcriber: transcriber, listener: listener}
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
}

// Upload handles POST /api/speech with an audio body.
func (h *SpeechHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "speech recognition is not configured", Status: string(recipe.StatusUnavailable)})
		return
	}

	encoding, ok := speech.EncodingForContentType(r.Header.Get("Content-Type"))
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported audio content type")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "audio too large")
		return
	}

	text, err := h.transcriber.Transcribe(r.Context(), speech.Audio{Data: data, Encoding: encoding})
	h.reply(w, r, text, err)
}

// Listen handles POST /api/speech/listen by recording from the server microphone.
func (h *SpeechHandler) Listen(w http.ResponseWriter, r *http.Request) {
	if h.listener == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "speech recognition is not configured", Status: string(recipe.StatusUnavailable)})
		return
	}

	text, err := h.listener.Listen(r.Context())
	h.reply(w, r, text, err)
}

func (h *SpeechHandler) reply(w http.ResponseWriter, r *http.Request, text string, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, transcriptResponse{Transcript: text})
		return
	}

	logging.Ctx(r.Context()).Warn().Err(err).Msg("speech recognition failed")

	switch {
	case errors.Is(err, speech.ErrUnintelligible), errors.Is(err, speech.ErrNoAudio):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Could not understand the audio.", Status: "unintelligible"})
	case errors.Is(err, speech.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Speech recognition service is unavailable.", Status: string(recipe.StatusUnavailable)})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Speech recognition failed.", Status: string(recipe.StatusFailed)})
	}
}
