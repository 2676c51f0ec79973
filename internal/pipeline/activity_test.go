package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActivity_Report(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	a := NewActivity(3)
	a.now = func() time.Time { return now }

	done := a.Begin(AgentScan)
	report := a.Report()
	require.Len(t, report.Agents, 4)
	require.Equal(t, "ScanAgent", report.Agents[0].Name)
	require.Equal(t, "active", report.Agents[0].Status)
	require.EqualValues(t, 1, report.Agents[0].Active)
	require.Equal(t, 0, report.Agents[0].Progress)
	require.NotNil(t, report.ActivityLogs)
	require.Empty(t, report.ActivityLogs)

	done("Scanned for crisis events", StatusSuccess)
	done("called twice", StatusFailed)

	now = now.Add(2 * time.Minute)
	report = a.Report()
	require.Equal(t, "idle", report.Agents[0].Status)
	require.EqualValues(t, 1, report.Agents[0].Processed)
	require.Equal(t, 100, report.Agents[0].Progress)
	require.Equal(t, []ActivityEntry{
		{Time: "2 minutes ago", Agent: "ScanAgent", Action: "Scanned for crisis events", Status: "success"},
	}, report.ActivityLogs)
}

func TestActivity_RingKeepsNewest(t *testing.T) {
	a := NewActivity(3)
	for i := 0; i < 5; i++ {
		a.Record(AgentSystem, fmt.Sprintf("event %d", i), StatusSuccess)
	}

	logs := a.Report().ActivityLogs
	require.Len(t, logs, 3)
	require.Equal(t, "event 4", logs[0].Action)
	require.Equal(t, "event 3", logs[1].Action)
	require.Equal(t, "event 2", logs[2].Action)
	require.Equal(t, "now", logs[0].Time)
}
