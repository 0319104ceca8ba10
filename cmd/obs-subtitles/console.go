package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/miqbot/obs-subtitles/pkg/control"
	"github.com/miqbot/obs-subtitles/pkg/subtitle"
)

// Scheduler is the subset of *subtitle.Scheduler the console uses.
type Scheduler interface {
	Submit(ctx context.Context, text string) (subtitle.Result, error)
	Generation() uint64
}

// Channel is the subset of *control.Client the console uses.
type Channel interface {
	Ready() bool
	State() control.State
	ServerVersion() string
}

// Console reads lines and shows each one as a subtitle.
type Console struct {
	subtitles Scheduler
	channel   Channel
	out       io.Writer
}

// NewConsole creates a console writing feedback to out.
func NewConsole(subtitles Scheduler, channel Channel, out io.Writer) *Console {
	return &Console{
		subtitles: subtitles,
		channel:   channel,
		out:       out,
	}
}

// Run reads lines from rl until EOF, /quit, ctx cancellation or a fatal
// channel error, which it returns.
func (c *Console) Run(ctx context.Context, rl *readline.Instance) error {
	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			return nil
		}

		quit, err := c.Handle(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Handle processes one input line. It returns quit=true when the user
// asked to exit, and a non-nil error only if the channel is dead.
func (c *Console) Handle(ctx context.Context, line string) (quit bool, err error) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false, nil
	}

	if strings.HasPrefix(input, "/") && !strings.HasPrefix(input, "//") {
		return c.command(input), nil
	}
	// "//" escapes a subtitle that starts with a slash.
	input = strings.TrimPrefix(input, "/")

	res, err := c.subtitles.Submit(ctx, input)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		if control.IsFatal(err) {
			return true, err
		}
		return false, nil
	}

	fmt.Fprintf(c.out, "%s shown for %.2fs (%d chars)\n", res.RequestID, res.ShowSeconds, res.VisibleChars)
	return false, nil
}

func (c *Console) command(input string) bool {
	switch cmd := strings.ToLower(strings.Fields(input)[0]); cmd {
	case "/help", "/?":
		c.printHelp()
	case "/status":
		fmt.Fprintf(c.out, "channel: %s (obs-websocket %s)\n", c.channel.State(), c.channel.ServerVersion())
		fmt.Fprintf(c.out, "subtitles shown: %d\n", c.subtitles.Generation())
	case "/quit", "/exit", "/q":
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type /help for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `Type a line to show it as a subtitle. A new line replaces the current one.
Commands:
  /status   - Show connection state
  /help     - Show this help
  /quit     - Exit (also Ctrl+D)
Start a line with // to show text beginning with a slash.`)
}
