package domain

import (
	"fmt"
	"time"
)

// AgentMetric is one recorded measurement of an agent call.
// Optional numeric fields are zero when the backend omits them.
type AgentMetric struct {
	AgentCode   string  `json:"agentCode"`
	MetricCode  string  `json:"metricCode"`
	MetricValue float64 `json:"metricValue"`
	Model       string  `json:"model,omitempty"`
	Cost        float64 `json:"cost,omitempty"`
	TokenCount  int     `json:"tokenCount,omitempty"`
	IntentCode  string  `json:"intentCode,omitempty"`
	UserName    string  `json:"userName,omitempty"`
	RequestID   string  `json:"requestId,omitempty"`
	SessionID   string  `json:"sessionId,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// Time parses Timestamp. The zero time is returned when it cannot be parsed.
func (m AgentMetric) Time() time.Time {
	t, _ := ParseTimestamp(m.Timestamp)
	return t
}

// MetricQuery filters agent metrics. Empty fields do not filter.
type MetricQuery struct {
	AgentCode  string
	MetricCode string
	Start      time.Time
	End        time.Time
}

// Validate rejects a range whose start is after its end.
func (q MetricQuery) Validate() error {
	if !q.Start.IsZero() && !q.End.IsZero() && q.Start.After(q.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidRange)
	}
	return nil
}

// MonthlyCost is an aggregated spend for one agent, optionally per user, in one month.
type MonthlyCost struct {
	AgentCode string  `json:"agentCode"`
	UserName  string  `json:"userName,omitempty"`
	Month     string  `json:"month"`
	TotalCost float64 `json:"totalCost"`
	UpdatedOn string  `json:"updatedOn,omitempty"`
}

// CostFilter narrows monthly costs. Empty fields do not filter.
type CostFilter struct {
	AgentCode string
	UserName  string
	Month     string
}

// Matches reports whether c passes every set field of f.
func (f CostFilter) Matches(c MonthlyCost) bool {
	return (f.AgentCode == "" || f.AgentCode == c.AgentCode) &&
		(f.UserName == "" || f.UserName == c.UserName) &&
		(f.Month == "" || f.Month == c.Month)
}

// TotalCost sums the spend of costs.
func TotalCost(costs []MonthlyCost) float64 {
	var total float64
	for _, c := range costs {
		total += c.TotalCost
	}
	return total
}
