package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTextAndJSON(t *testing.T) {
	for _, format := range []Format{Text, JSON} {
		logger, err := New(LevelInfo, format)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		logger.Info("probe", zap.String("k", "v"))
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("not-a-level", Text)
	assert.Error(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(LevelInfo, Format("xml"))
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotNil(t, Nop())
}
