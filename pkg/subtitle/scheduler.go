package subtitle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/miqbot/obs-subtitles/pkg/control"
	"github.com/miqbot/obs-subtitles/pkg/log"
	"github.com/miqbot/obs-subtitles/pkg/wrap"
)

// MaxTextChars is the longest accepted submission, in characters.
const MaxTextChars = 500

// MaxSecondsPerChar caps the display rate so the longest subtitle's
// display time stays a valid time.Duration.
const MaxSecondsPerChar = 60.0

// Defaults.
const (
	DefaultInputName         = "Subtitle"
	DefaultLineMax           = 13
	DefaultMinSecondsPerChar = 0.25
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("subtitle scheduler is closed")

// ValidationError reports a submission rejected before reaching OBS.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid subtitle: " + e.Reason
}

// Kind returns control.KindValidation.
func (e *ValidationError) Kind() control.Kind { return control.KindValidation }

var _ control.Classified = (*ValidationError)(nil)

// TextSetter sets the text of an OBS text input.
// *control.Client satisfies it.
type TextSetter interface {
	SetText(ctx context.Context, inputName, text string) error
}

// Config configures a Scheduler.
type Config struct {
	// InputName is the OBS text source to drive (default: "Subtitle").
	InputName string

	// LineMax is the wrap width in characters (default: 13).
	LineMax int

	// MinSecondsPerChar is the display time per visible character.
	// Zero clears immediately after display.
	MinSecondsPerChar float64

	// Logger is the optional logger for operational output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives scheduler state events.
	// If nil, capture is disabled.
	ProtocolLogger log.Logger
}

// Result describes an accepted submission.
type Result struct {
	RequestID    string
	Wrapped      string
	VisibleChars int
	ShowSeconds  float64
}

// ShowDuration returns ShowSeconds as a time.Duration.
func (r Result) ShowDuration() time.Duration {
	return time.Duration(r.ShowSeconds * float64(time.Second))
}

// Scheduler displays subtitles and clears them after their display time.
type Scheduler struct {
	channel TextSetter
	config  Config

	// sem is the critical section. A weighted semaphore rather than a
	// mutex so a clear task waiting for it can be cancelled.
	sem *semaphore.Weighted

	// Guarded by sem.
	seq     uint64
	pending *clearTask
	closed  bool

	// generation is written under sem and may be read anywhere.
	generation atomic.Uint64
}

// New creates a Scheduler driving channel.
func New(channel TextSetter, config Config) *Scheduler {
	if config.InputName == "" {
		config.InputName = DefaultInputName
	}
	if config.LineMax == 0 {
		config.LineMax = DefaultLineMax
	}
	switch r := config.MinSecondsPerChar; {
	case math.IsNaN(r) || r < 0:
		config.MinSecondsPerChar = 0
	case r > MaxSecondsPerChar:
		config.MinSecondsPerChar = MaxSecondsPerChar
	}

	return &Scheduler{
		channel: channel,
		config:  config,
		sem:     semaphore.NewWeighted(1),
	}
}

// Generation returns the number of accepted submissions.
func (s *Scheduler) Generation() uint64 {
	return s.generation.Load()
}

// Validate checks text without submitting it.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Reason: "text is empty"}
	}
	if n := utf8.RuneCountInString(text); n > MaxTextChars {
		return &ValidationError{Reason: fmt.Sprintf("text has %d characters, maximum is %d", n, MaxTextChars)}
	}
	return nil
}

// Submit displays text and schedules its clear. It returns once OBS has
// accepted the display request; the clear happens later.
//
// A submission supersedes any earlier one: the earlier clear is cancelled
// and will not fire.
func (s *Scheduler) Submit(ctx context.Context, text string) (Result, error) {
	if err := Validate(text); err != nil {
		return Result{}, err
	}

	wrapped := wrap.Wrap(text, s.config.LineMax)
	chars := wrap.VisibleCharCount(wrapped)
	res := Result{
		Wrapped:      wrapped,
		VisibleChars: chars,
		ShowSeconds:  float64(chars) * s.config.MinSecondsPerChar,
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer s.sem.Release(1)

	if s.closed {
		return Result{}, ErrClosed
	}

	s.seq++
	res.RequestID = "sub-" + strconv.FormatUint(s.seq, 10)
	gen := s.generation.Add(1)

	if s.pending != nil {
		s.pending.stop()
		s.logState("SUPERSEDED", fmt.Sprintf("generation %d replaced by %d", s.pending.generation, gen))
		s.pending = nil
	}

	// A display request cannot be abandoned midway without desynchronising
	// the channel, so caller cancellation stops at the critical section.
	if err := s.channel.SetText(context.WithoutCancel(ctx), s.config.InputName, wrapped); err != nil {
		s.warn("subtitle display failed", "requestId", res.RequestID, "error", err)
		return Result{}, fmt.Errorf("%s: %w", res.RequestID, err)
	}
	s.logState("SHOWN", fmt.Sprintf("%s generation %d for %.2fs", res.RequestID, gen, res.ShowSeconds))

	task := newClearTask(gen, res.ShowDuration())
	s.pending = task
	go s.runClear(task)

	s.debug("subtitle shown",
		"requestId", res.RequestID,
		"generation", gen,
		"visibleChars", chars,
		"clearAt", task.expiresAt())
	return res, nil
}

// runClear is the body of a clear task goroutine.
func (s *Scheduler) runClear(t *clearTask) {
	defer close(t.done)
	defer t.cancel()

	if !t.wait() {
		return
	}

	if err := s.sem.Acquire(t.ctx, 1); err != nil {
		return
	}
	defer s.sem.Release(1)

	// Acquire may succeed on a cancelled context.
	if t.ctx.Err() != nil {
		return
	}
	if s.pending == t {
		s.pending = nil
	}

	if cur := s.generation.Load(); cur != t.generation {
		s.debug("stale clear skipped", "generation", t.generation, "current", cur)
		return
	}

	if err := s.channel.SetText(t.ctx, s.config.InputName, ""); err != nil {
		// The text stays up until the next submission.
		s.warn("subtitle clear failed", "generation", t.generation, "error", err)
		s.logError(err)
		return
	}
	s.logState("CLEARED", fmt.Sprintf("generation %d", t.generation))
}

// Close cancels any pending clear and rejects further submissions. It
// waits for an in-flight display or clear request to finish. The control
// channel is not closed.
func (s *Scheduler) Close() error {
	s.sem.Acquire(context.Background(), 1)
	defer s.sem.Release(1)

	if s.closed {
		return nil
	}
	s.closed = true

	if s.pending != nil {
		s.pending.stop()
		s.pending = nil
	}
	s.logState("CLOSED", "")
	return nil
}

func (s *Scheduler) debug(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}

func (s *Scheduler) warn(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(msg, args...)
	}
}

func (s *Scheduler) logState(state, reason string) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityScheduler,
			NewState: state,
			Reason:   reason,
		},
	})
}

func (s *Scheduler) logError(err error) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerSession,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSession,
			Message: err.Error(),
			Kind:    control.KindOf(err).String(),
			Context: "clear",
		},
	})
}
