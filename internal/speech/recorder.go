package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Recorder captures audio from a microphone for at most d.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) (Audio, error)
}

// CommandRecorder runs an external command that writes raw 16-bit mono PCM to
// stdout, such as sox's rec or arecord. The command is stopped when d elapses.
type CommandRecorder struct {
	Command    []string
	SampleRate int64
}

// Record runs the command for d and returns what it wrote.
func (r *CommandRecorder) Record(ctx context.Context, d time.Duration) (Audio, error) {
	if len(r.Command) == 0 {
		return Audio{}, fmt.Errorf("speech: no record command configured: %w", ErrUnavailable)
	}

	recordCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(recordCtx, r.Command[0], r.Command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err != nil {
		// The deadline ending the recording is the normal way out.
		stoppedByDeadline := errors.Is(recordCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
		if !stoppedByDeadline {
			if ctx.Err() != nil {
				return Audio{}, ctx.Err()
			}
			return Audio{}, fmt.Errorf("speech: record command failed: %v: %s: %w", err, stderr.String(), ErrUnavailable)
		}
	}

	if stdout.Len() == 0 {
		return Audio{}, ErrNoAudio
	}

	return Audio{
		Data:       stdout.Bytes(),
		Encoding:   EncodingLinear16,
		SampleRate: r.SampleRate,
	}, nil
}

// Listener records one utterance and transcribes it.
type Listener struct {
	recorder    Recorder
	transcriber Transcriber
	duration    time.Duration
}

// NewListener creates a Listener that records for d.
func NewListener(recorder Recorder, transcriber Transcriber, d time.Duration) *Listener {
	if d <= 0 {
		d = 5 * time.Second
	}
	return &Listener{recorder: recorder, transcriber: transcriber, duration: d}
}

// Listen records from the microphone and returns the transcript.
func (l *Listener) Listen(ctx context.Context) (string, error) {
	audio, err := l.recorder.Record(ctx, l.duration)
	if err != nil {
		return "", err
	}
	return l.transcriber.Transcribe(ctx, audio)
}
