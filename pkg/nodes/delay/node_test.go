package delay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convy/flow/pkg/models"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"2h", 2 * time.Hour},
		{"1d", 24 * time.Hour},
		{"15", 15 * time.Minute},
	}

	for _, tc := range cases {
		got, err := ParseDuration(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseDuration_Rejects(t *testing.T) {
	for _, raw := range []string{"", "0m", "-5m", "soon", "5w"} {
		_, err := ParseDuration(raw)
		assert.Error(t, err, raw)
	}
}

func TestExecute_FreshEntrySuspendsWithWakeTime(t *testing.T) {
	node, err := NewDelayNode("d1", map[string]any{"duration": "5m"})
	require.NoError(t, err)

	ec := models.NewExecutionContext("exec-1", "wf-1", "org-1", nil)

	before := time.Now().UTC()
	result, err := node.Execute(context.Background(), ec, &models.NodeInput{})
	require.NoError(t, err)

	require.NotNil(t, result.Suspend)
	require.NotNil(t, result.Suspend.WakeAt)
	assert.Nil(t, result.Suspend.Input)

	wake := *result.Suspend.WakeAt
	assert.WithinDuration(t, before.Add(5*time.Minute), wake, 2*time.Second)
}

func TestExecute_ResumedEntryCompletes(t *testing.T) {
	node, err := NewDelayNode("d1", map[string]any{"duration": "5m"})
	require.NoError(t, err)

	ec := models.NewExecutionContext("exec-1", "wf-1", "org-1", nil)

	result, err := node.Execute(context.Background(), ec, &models.NodeInput{Resumed: true, TimedOut: true})
	require.NoError(t, err)

	assert.Nil(t, result.Suspend)
	assert.Equal(t, models.NodeStatusSuccess, result.Status)
}

func TestNewDelayNode_NumericDurationIsMinutes(t *testing.T) {
	node, err := NewDelayNode("d1", map[string]any{"duration": float64(10)})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, node.duration)
}
