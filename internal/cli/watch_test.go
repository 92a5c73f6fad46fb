package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCommand(t *testing.T) {
	t.Run("rejects an invalid cron expression", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.json")

		cmd := GetRootCmd()
		cmd.SetArgs([]string{"watch", "--schedule", "not a cron", missing})

		output := &bytes.Buffer{}
		cmd.SetOut(output)
		cmd.SetErr(output)

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cron expression")
	})

	t.Run("rejects six field expressions", func(t *testing.T) {
		// The six field form with seconds belongs to other cron dialects.
		missing := filepath.Join(t.TempDir(), "nope.json")

		cmd := GetRootCmd()
		cmd.SetArgs([]string{"watch", "--schedule", "0 0 8 * * *", missing})

		output := &bytes.Buffer{}
		cmd.SetOut(output)
		cmd.SetErr(output)

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cron expression")
	})

	t.Run("default schedule", func(t *testing.T) {
		scheduleFlag := watchCmd.Flags().Lookup("schedule")
		require.NotNil(t, scheduleFlag)
		assert.Equal(t, "0 8 * * *", scheduleFlag.DefValue)
	})
}
