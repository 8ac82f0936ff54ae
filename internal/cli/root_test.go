package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"study-planner/internal/config"
	"study-planner/internal/service"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "studyplanner", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "reconcile", "migrate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	logLevel := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevel)
	assert.Equal(t, "", logLevel.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestServeFlags(t *testing.T) {
	cmd := NewRootCommand()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	require.NotNil(t, serve.Flags().Lookup("addr"))
	noBot := serve.Flags().Lookup("no-bot")
	require.NotNil(t, noBot)
	assert.Equal(t, "false", noBot.DefValue)
}

func TestMigrateAndReconcile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cli.db") + "?_foreign_keys=on"

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"migrate", "--db", dsn, "--log-level", "error"})
	require.NoError(t, cmd.Execute())

	var out bytes.Buffer
	cmd = NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"reconcile", "--db", dsn, "--log-level", "error"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "planners: 0 checked, 0 repaired\ncalendars: 0 checked, 0 repaired\nstudies: 0 checked, 0 repaired\n", out.String())
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"migrate", "--db", filepath.Join(t.TempDir(), "x.db"), "--log-level", "loud"})
	assert.Error(t, cmd.Execute())
}

func TestScheduleReports(t *testing.T) {
	job := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"fixed time", config.Config{ReportAt: "07:30", ReportInterval: time.Hour}, false},
		{"interval", config.Config{ReportInterval: time.Hour}, false},
		{"disabled", config.Config{}, false},
		{"bad time", config.Config{ReportAt: "7"}, true},
		{"hour out of range", config.Config{ReportAt: "24:00"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := service.NewSchedulerService(time.UTC, zap.NewNop())
			err := scheduleReports(scheduler, tt.cfg, job)
			if tt.wantErr {
				assert.ErrorContains(t, err, "REPORT_AT")
				return
			}
			assert.NoError(t, err)
		})
	}
}
