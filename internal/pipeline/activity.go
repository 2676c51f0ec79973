package pipeline

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Agent names reported by AgentStatus
const (
	AgentScan    = "ScanAgent"
	AgentVerify  = "VerifyAgent"
	AgentScore   = "ScoreAgent"
	AgentExplain = "ExplainAgent"
	AgentSystem  = "System"
)

// Activity entry statuses
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusFailed  = "error"
)

// DefaultActivitySize is how many activity entries are retained
const DefaultActivitySize = 50

var agentDescriptions = []struct {
	name        string
	description string
}{
	{AgentScan, "Monitors social media and news sources for emerging claims"},
	{AgentVerify, "Cross-references claims with trusted fact-checking sources"},
	{AgentScore, "Calculates credibility scores based on evidence strength"},
	{AgentExplain, "Generates human-readable explanations and translations"},
}

// AgentInfo is the per-stage summary shown by /api/agents
type AgentInfo struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // active while work is in flight, idle otherwise
	Processed   int64  `json:"processed"`
	Active      int64  `json:"active"`
	Description string `json:"description"`
	Progress    int    `json:"progress"` // completed share of started work, 0-100
}

// ActivityEntry is one rendered log line
type ActivityEntry struct {
	Time   string `json:"time"`
	Agent  string `json:"agent"`
	Action string `json:"action"`
	Status string `json:"status"`
}

// AgentReport is the full /api/agents payload
type AgentReport struct {
	Agents       []AgentInfo     `json:"agents"`
	ActivityLogs []ActivityEntry `json:"activity_logs"`
}

type activityEvent struct {
	at     time.Time
	agent  string
	action string
	status string
}

type agentCounter struct {
	processed int64
	active    int64
}

// Activity keeps stage counters and a bounded ring of recent events
type Activity struct {
	mu       sync.Mutex
	counters map[string]*agentCounter
	ring     []activityEvent
	next     int
	full     bool
	now      func() time.Time
}

// NewActivity creates a log retaining the last size events
func NewActivity(size int) *Activity {
	if size <= 0 {
		size = DefaultActivitySize
	}
	a := &Activity{
		counters: make(map[string]*agentCounter),
		ring:     make([]activityEvent, size),
		now:      time.Now,
	}
	for _, d := range agentDescriptions {
		a.counters[d.name] = &agentCounter{}
	}
	return a
}

// Begin marks one unit of work as in flight for agent. The returned func
// completes it and records an entry.
func (a *Activity) Begin(agent string) func(action, status string) {
	a.mu.Lock()
	a.counter(agent).active++
	a.mu.Unlock()

	var once sync.Once
	return func(action, status string) {
		once.Do(func() {
			a.mu.Lock()
			c := a.counter(agent)
			c.active--
			c.processed++
			a.push(agent, action, status)
			a.mu.Unlock()
		})
	}
}

// Record adds an entry without touching counters
func (a *Activity) Record(agent, action, status string) {
	a.mu.Lock()
	a.push(agent, action, status)
	a.mu.Unlock()
}

// must hold mu
func (a *Activity) counter(agent string) *agentCounter {
	c, ok := a.counters[agent]
	if !ok {
		c = &agentCounter{}
		a.counters[agent] = c
	}
	return c
}

// must hold mu
func (a *Activity) push(agent, action, status string) {
	a.ring[a.next] = activityEvent{at: a.now(), agent: agent, action: action, status: status}
	a.next = (a.next + 1) % len(a.ring)
	if a.next == 0 {
		a.full = true
	}
}

// Report renders counters and recent events, newest first
func (a *Activity) Report() AgentReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	report := AgentReport{
		Agents:       make([]AgentInfo, 0, len(agentDescriptions)),
		ActivityLogs: []ActivityEntry{},
	}

	for _, d := range agentDescriptions {
		c := a.counters[d.name]
		info := AgentInfo{
			Name:        d.name,
			Status:      "idle",
			Processed:   c.processed,
			Active:      c.active,
			Description: d.description,
		}
		if c.active > 0 {
			info.Status = "active"
		}
		if total := c.processed + c.active; total > 0 {
			info.Progress = int(c.processed * 100 / total)
		}
		report.Agents = append(report.Agents, info)
	}

	n := a.next
	if a.full {
		n = len(a.ring)
	}
	for i := 0; i < n; i++ {
		idx := (a.next - 1 - i + len(a.ring)) % len(a.ring)
		ev := a.ring[idx]
		report.ActivityLogs = append(report.ActivityLogs, ActivityEntry{
			Time:   humanize.RelTime(ev.at, now, "ago", "from now"),
			Agent:  ev.agent,
			Action: ev.action,
			Status: ev.status,
		})
	}

	return report
}
