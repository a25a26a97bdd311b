package progress

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEWriterFramesEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	w, ok := NewSSEWriter(rec)
	require.True(t, ok)

	w.Send(Event{Stage: StageSources, Message: "Fetching registration sources..."})
	w.Send(Event{Stage: StageComplete, Message: "done", Data: map[string]int{"totalLeads": 3}})

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"stage":"sources"`)
	assert.Contains(t, body, `"totalLeads":3`)
	// every frame ends with a blank line
	assert.Contains(t, body, "\n\n")
}

func TestSSEWriterOmitsEmptyOptionalFields(t *testing.T) {
	rec := httptest.NewRecorder()
	w, _ := NewSSEWriter(rec)

	w.Send(Event{Stage: StageFields, Message: "x"})

	body := rec.Body.String()
	assert.NotContains(t, body, "progress")
	assert.NotContains(t, body, "data\":")
}

func TestStageTerminal(t *testing.T) {
	assert.True(t, StageComplete.Terminal())
	assert.True(t, StageError.Terminal())
	assert.False(t, StageContacts.Terminal())
	assert.False(t, StageAggregate.Terminal())
}
