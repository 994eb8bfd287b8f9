package client

import "time"

// Severity rates a finding. Severities have a fixed total order
// low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank maps a severity to its position in the total order; unknown
// severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Finding is a discrete security observation reported during a run.
// Findings are immutable once reported.
type Finding struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Service     string   `json:"service,omitempty"`
	Port        int      `json:"port,omitempty"`
}

// StepStatus is the lifecycle state of one run step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

// RunStep tracks one workflow node's progress within a run. Logs are
// append-only in the order the backend reported them.
type RunStep struct {
	NodeID      string     `json:"nodeId"`
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	Logs        []string   `json:"logs"`
	Findings    []Finding  `json:"findings,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// RunStatus is the lifecycle state of a run:
// queued -> running -> {succeeded, failed}.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Terminal reports whether no further status transitions can occur.
// Statuses this client does not know (a future backend addition such as a
// cancelled state) are treated as non-terminal.
func (s RunStatus) Terminal() bool {
	return s == RunSucceeded || s == RunFailed
}

// SeverityCounts is a per-severity finding tally.
type SeverityCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// RunSummary aggregates a finished run's findings.
type RunSummary struct {
	FindingsCount int            `json:"findingsCount"`
	Severities    SeverityCounts `json:"severities"`
}

// Run is one execution instance of a workflow. It is owned by the backend;
// the client only ever reads snapshots of it.
type Run struct {
	ID           string      `json:"id"`
	WorkflowID   string      `json:"workflowId"`
	WorkflowName string      `json:"workflowName"`
	Status       RunStatus   `json:"status"`
	StartedAt    time.Time   `json:"startedAt"`
	EndedAt      *time.Time  `json:"endedAt,omitempty"`
	Duration     float64     `json:"duration,omitempty"`
	Steps        []RunStep   `json:"steps"`
	Summary      *RunSummary `json:"summary,omitempty"`
}

// RunMode selects live scanning or the backend's demo data path.
type RunMode string

const (
	RunModeLive RunMode = "live"
	RunModeDemo RunMode = "demo"
)

// StartRunRequest is the POST /runs body.
type StartRunRequest struct {
	WorkflowID       string   `json:"workflowId"`
	Targets          []string `json:"targets"`
	RunMode          RunMode  `json:"runMode"`
	AuthorizeTargets bool     `json:"authorizeTargets"`
}

// RunQuery filters GET /runs.
type RunQuery struct {
	WorkflowID string
	Status     RunStatus
	Limit      int
	Offset     int
}

// RunLogs is a page of a run's flattened log stream.
type RunLogs struct {
	Logs    []string `json:"logs"`
	HasMore bool     `json:"hasMore"`
}

// Target is an authorized scan destination: an IP, CIDR, or hostname.
type Target struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// Integration is a notification channel configuration.
type Integration struct {
	Type       string `json:"type"` // "slack" or "discord"
	WebhookURL string `json:"webhookUrl"`
	Enabled    bool   `json:"enabled"`
}

// APIKey identifies a backend API key. Key is only present in the creation
// response; afterwards only the prefix is available.
type APIKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key,omitempty"`
	KeyPrefix string     `json:"keyPrefix"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	LastUsed  *time.Time `json:"lastUsed,omitempty"`
}

// Health is the GET /health response.
type Health struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Redis     string    `json:"redis"`
	Timestamp time.Time `json:"timestamp"`
}

// RunsByStatus breaks down run counts per status.
type RunsByStatus struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Metrics is the GET /metrics response.
type Metrics struct {
	TotalWorkflows         int          `json:"totalWorkflows"`
	TotalRuns              int          `json:"totalRuns"`
	RunsByStatus           RunsByStatus `json:"runsByStatus"`
	SuccessRate            float64      `json:"successRate"`
	ActiveAPIKeys          int          `json:"activeApiKeys"`
	AuthorizedTargetsCount int          `json:"authorizedTargetsCount"`
}

// TokenResponse is the POST /auth/token response.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
