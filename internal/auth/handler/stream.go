package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dominic-source/kadabite-app/internal/metrics"
	"github.com/dominic-source/kadabite-app/internal/screen"

	"github.com/gin-gonic/gin"
)

const (
	defaultFlashDuration = 500 * time.Millisecond
	maxFlashDuration     = 10 * time.Second
)

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// flashStream plays the flash screen as server-sent events. Closing the
// connection stops the sequence and cancels its pending timer.
func (h *Handler) flashStream(c *gin.Context) {
	d := defaultFlashDuration
	if raw := c.Query("duration"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 || time.Duration(ms)*time.Millisecond > maxFlashDuration {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}
		d = time.Duration(ms) * time.Millisecond
	}

	ctx := c.Request.Context()
	events := make(chan screen.SequencerEvent, screen.DefaultStages+2)
	seq := screen.NewSequencer(d, screen.DefaultStages, h.scheduler, func(ev screen.SequencerEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})

	metrics.StreamOpened("flash")
	defer metrics.StreamClosed("flash")

	sseHeaders(c)
	seq.Start()
	defer seq.Stop()

	for {
		select {
		case ev := <-events:
			c.SSEvent("stage", ev)
			c.Writer.Flush()
			if ev.Hidden {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// redirectStream plays the redirect page rotation until the ceiling or
// until the client leaves.
func (h *Handler) redirectStream(c *gin.Context) {
	ctx := c.Request.Context()
	events := make(chan screen.RotatorEvent, 4)
	rot := screen.NewRotator(screen.DefaultRotatorConfig(), h.scheduler, func(ev screen.RotatorEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})

	metrics.StreamOpened("redirect")
	defer metrics.StreamClosed("redirect")

	sseHeaders(c)
	rot.Start()
	defer rot.Stop()

	for {
		select {
		case ev := <-events:
			c.SSEvent("rotate", ev)
			c.Writer.Flush()
			if ev.Done {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
