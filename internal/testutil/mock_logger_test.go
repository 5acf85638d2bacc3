package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_WithSharesSink(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.With(logging.String("session_id", "s1")).Named("orgchart")

	child.Warn("upload rejected", logging.Int("rows", 3))

	msg, ok := root.Find("warn", "upload rejected")
	require.True(t, ok)
	assert.Equal(t, "orgchart", msg.Logger)
	v, ok := msg.Field("session_id")
	assert.True(t, ok)
	assert.Equal(t, "s1", v)
	v, _ = msg.Field("rows")
	assert.Equal(t, 3, v)
}

func TestFixtures(t *testing.T) {
	assert.Contains(t, testutil.InternsCSV, "CollegeName,TotalRegistrations,State")
	assert.Contains(t, testutil.LeadsCSV, "CollegeName,TotalRegistrations,State")
	assert.Equal(t, "AIInterns.csv", testutil.InternsUpload().Name)
}

//Personal.AI order the ending
