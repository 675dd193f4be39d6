package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryJournal(t *testing.T) {
	j := NewMemory()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	j.LogEvent(Event{Time: now, Type: "signal", Description: "enter-long"})
	j.LogEvent(Event{Time: now.Add(time.Minute), Type: "trade", Description: "closed"})
	j.LogEvent(Event{Time: now.Add(2 * time.Minute), Type: "signal", Description: "exit-long"})

	signals := j.Events("signal")
	assert.Len(t, signals, 2)
	assert.Equal(t, "enter-long", signals[0].Description)
	assert.Equal(t, "exit-long", signals[1].Description)

	assert.Len(t, j.Events("trade"), 1)
	assert.Len(t, j.Events(""), 3, "empty type matches everything")
	assert.Empty(t, j.Events("order"))
}
