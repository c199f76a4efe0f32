package api

import "github.com/alvinbaena/pwd-analyzer/pkg/analysis"

type analyzeRequest struct {
	Password string `json:"password" binding:"required"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

type structureResponse struct {
	Score     int      `json:"score"`
	Feedback  []string `json:"feedback"`
	Entropy   float64  `json:"entropy"`
	CrackTime string   `json:"crack_time"`
}

// analyzeResponse keeps the breaches field as a plain number for existing
// clients: -1 means the lookup failed and must be shown as unverified.
type analyzeResponse struct {
	Structure    structureResponse         `json:"structure"`
	Breaches     int64                     `json:"breaches"`
	BreachStatus string                    `json:"breach_status"`
	Patterns     *analysis.PatternEstimate `json:"patterns,omitempty"`
}

type breachResponse struct {
	Breaches     int64  `json:"breaches"`
	BreachStatus string `json:"breach_status"`
}

func newAnalyzeResponse(r analysis.Report) analyzeResponse {
	return analyzeResponse{
		Structure: structureResponse{
			Score:     r.Strength.Score,
			Feedback:  r.Strength.Feedback,
			Entropy:   r.Strength.Entropy,
			CrackTime: r.Strength.CrackTime,
		},
		Breaches:     r.Breach.Count,
		BreachStatus: r.Breach.Status(),
		Patterns:     r.Patterns,
	}
}
