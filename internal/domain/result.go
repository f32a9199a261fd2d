package domain

import (
	"encoding/json"
	"time"
)

// MetricResult is what a single metric returns. Feature carries the principal
// derived value (age in days, profit, credit limit) so callers can inspect it
// without reading the feedback.
type MetricResult struct {
	Metric   string
	Category Category
	Score    float64
	Feature  float64
	Err      error
}

func (r MetricResult) Failed() bool {
	return r.Err != nil
}

func (r MetricResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Metric   string   `json:"metric"`
		Category Category `json:"category"`
		Score    float64  `json:"score"`
		Feature  float64  `json:"feature"`
		Error    string   `json:"error,omitempty"`
	}{
		Metric:   r.Metric,
		Category: r.Category,
		Score:    r.Score,
		Feature:  r.Feature,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type Risk struct {
	LoanAmount int64     `json:"loan_amount"`
	Level      RiskLevel `json:"risk_level"`
}

type Source string

const (
	SourceBank     Source = "bank"
	SourceExchange Source = "exchange"
)

// ScoreRecord is one issued score as returned to the caller and kept for
// later lookup. Risk is nil when no score could be computed.
type ScoreRecord struct {
	RequestID      string               `json:"request_id"`
	Source         Source               `json:"source"`
	ScoreExist     bool                 `json:"score_exist"`
	Score          float64              `json:"score"`
	Branch         string               `json:"branch,omitempty"`
	Quality        string               `json:"quality,omitempty"`
	Risk           *Risk                `json:"risk,omitempty"`
	Categories     map[Category]float64 `json:"categories,omitempty"`
	Interpretation any                  `json:"interpretation"`
	Message        string               `json:"message"`
	Feedback       *Feedback            `json:"feedback"`
	IssuedAt       time.Time            `json:"issued_at"`
	Signature      string               `json:"signature,omitempty"`
}

// LoanAmount and RiskLevel return zero values when there is no risk.
func (r *ScoreRecord) LoanAmount() int64 {
	if r.Risk == nil {
		return 0
	}
	return r.Risk.LoanAmount
}

func (r *ScoreRecord) RiskLevel() string {
	if r.Risk == nil {
		return ""
	}
	return string(r.Risk.Level)
}
