package models

// RunSign marks the direction of a consecutive run of differences.
type RunSign string

const (
	RunMinus RunSign = "minus"
	RunPlus  RunSign = "plus"
)

// ItemAnalysis is the derived classification for one item, computed on
// demand from the history ledger plus the current working list.
type ItemAnalysis struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	HistoryText    string `json:"history_text"`
	Recommendation string `json:"recommendation"`
	RecentTrend    string `json:"recent_trend"`
}

// ConsecutiveRunRecord describes an item's still-open run of same-sign
// differences ending at the most recent history entry.
type ConsecutiveRunRecord struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	ConsecutiveCount int     `json:"consecutive_count"`
	Sign             RunSign `json:"sign"`
}
