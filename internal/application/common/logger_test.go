package common_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.messages = append(l.messages, level+" "+message)
}

func TestLoggerFromContext(t *testing.T) {
	// No logger falls back to a no-op
	assert.NotPanics(t, func() {
		common.LoggerFromContext(context.Background()).Log("INFO", "dropped", nil)
	})

	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)
	common.LoggerFromContext(ctx).Log("INFO", "planning started", nil)

	assert.Equal(t, []string{"INFO planning started"}, logger.messages)
}
