package notify

import (
	"bytes"
	"os"
	"testing"

	"market-buzz/src/logger"
	"market-buzz/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiNotifier_FansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := NewMultiNotifier(a, nil)
	m.Add(b)
	m.Add(nil)

	m.Notify(New(models.NotifyError, "yahoo unreachable"))

	require.Len(t, a.Messages(), 1)
	require.Len(t, b.Messages(), 1)
	assert.Equal(t, models.NotifyError, a.Messages()[0].Level)
	assert.Equal(t, "yahoo unreachable", b.Messages()[0].Message)
	assert.False(t, a.Messages()[0].Timestamp.IsZero())
}

func TestLogNotifier_WritesToLog(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	n := NewLogNotifier(logger.NewLogger(nil, "NotifyTest"))
	n.Notify(New(models.NotifyWarning, "reddit throttled"))

	assert.Contains(t, buf.String(), "reddit throttled")
	assert.Contains(t, buf.String(), "level=warning")
}
