package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "svc", false)

	lg := Component("bot")
	lg.Debug().Msg("hidden")
	lg.Info().Int64("user_id", 7).Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component:bot")
	assert.Contains(t, out, "user_id:7")

	buf.Reset()
	InitWithWriter(&buf, "svc", true)
	dbg := Component("worker")
	dbg.Debug().Msg("visible now")
	assert.Contains(t, buf.String(), "visible now")
}
