package control

import (
	"time"

	"github.com/miqbot/obs-subtitles/pkg/log"
)

func (c *Client) debug(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}

func (c *Client) info(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Warn(msg, args...)
	}
}

// capture sends an event to the protocol logger, filling in the common
// fields.
func (c *Client) capture(event log.Event) {
	if c.config.ProtocolLogger == nil {
		return
	}
	event.Timestamp = time.Now()
	event.ConnectionID = c.connID
	event.RemoteAddr = c.config.URL
	c.config.ProtocolLogger.Log(event)
}

func (c *Client) logFrame(dir log.Direction, data []byte) {
	if c.config.ProtocolLogger == nil {
		return
	}
	c.capture(log.Event{
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame:     log.NewFrameEvent(data),
	})
}

func (c *Client) logMessage(dir log.Direction, msg *log.MessageEvent) {
	c.debug("control frame",
		"direction", dir.String(),
		"op", msg.Op.String(),
		"requestId", msg.RequestID)
	c.capture(log.Event{
		Direction: dir,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		Message:   msg,
	})
}

func (c *Client) logState(from, to State, reason string) {
	c.debug("control state", "from", from.String(), "to", to.String(), "reason", reason)
	c.capture(log.Event{
		Layer:    log.LayerSession,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityChannel,
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

func (c *Client) logError(layer log.Layer, err error, context string) {
	c.capture(log.Event{
		Layer:    layer,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Kind:    KindOf(err).String(),
			Context: context,
		},
	})
}
