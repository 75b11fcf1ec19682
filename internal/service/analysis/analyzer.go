package analysis

import (
	"sort"

	"go.uber.org/zap"

	"opnamecore/internal/domain/models"
)

// recentWindowSize is the number of most recent history entries per item
// that feed the reversal detection, distinct from all-time run length.
const recentWindowSize = 5

// Result is the full analyzer output for one invocation.
type Result struct {
	PerItem         []models.ItemAnalysis `json:"per_item"`
	Monitoring      []models.ItemAnalysis `json:"monitoring"`
	ConsecutiveRuns ConsecutiveRuns       `json:"consecutive_runs"`
}

// ConsecutiveRuns lists the items whose still-open run of same-sign
// differences at the end of history is at least two counts long.
type ConsecutiveRuns struct {
	Minus []models.ConsecutiveRunRecord `json:"minus"`
	Plus  []models.ConsecutiveRunRecord `json:"plus"`
}

// itemStats accumulates per-item counting statistics over the history.
type itemStats struct {
	count             int
	minusCount        int
	plusCount         int
	recentSeen        int
	recentMinusCount  int
	recentPlusCount   int
	recentNormalCount int

	maxConsecutiveMinus int
	maxConsecutivePlus  int

	// trailing runs after the ascending walk; the non-zero one is the
	// still-open run ending at the most recent entry.
	openMinusRun int
	openPlusRun  int
}

// Analyzer classifies discrepancy patterns from the completed-count history.
// It is a pure read-side consumer: it never mutates its inputs, and two
// invocations over the same inputs produce identical output.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer constructs a trend analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze classifies every item of the current working list against the
// history of completed counts. Items never counted in the current session
// are excluded entirely.
func (a *Analyzer) Analyze(current []models.SOWorkingItem, history []models.SOHistoryRecord) Result {
	result := Result{
		PerItem:    make([]models.ItemAnalysis, 0, len(current)),
		Monitoring: make([]models.ItemAnalysis, 0),
	}
	if len(current) == 0 {
		return result
	}

	stats := make(map[string]*itemStats, len(current))
	for _, item := range current {
		if _, ok := stats[item.Code]; !ok {
			stats[item.Code] = &itemStats{}
		}
	}

	// Recent-window statistics need most-recent-first order; run statistics
	// need chronological order. Two distinct passes over two sorted copies.
	descending := sortedByDate(history, false)
	ascending := sortedByDate(history, true)

	for _, record := range descending {
		if len(record.Items) == 0 {
			a.logger.Debug("history record has no item snapshots", zap.String("record_id", record.ID))
			continue
		}
		for _, snap := range record.Items {
			st, ok := stats[snap.Code]
			if !ok {
				continue
			}
			st.count++
			switch {
			case snap.Difference < 0:
				st.minusCount++
			case snap.Difference > 0:
				st.plusCount++
			}
			if st.recentSeen < recentWindowSize {
				st.recentSeen++
				switch {
				case snap.Difference < 0:
					st.recentMinusCount++
				case snap.Difference > 0:
					st.recentPlusCount++
				default:
					st.recentNormalCount++
				}
			}
		}
	}

	for _, record := range ascending {
		for _, snap := range record.Items {
			st, ok := stats[snap.Code]
			if !ok {
				continue
			}
			switch {
			case snap.Difference < 0:
				st.openMinusRun++
				st.openPlusRun = 0
			case snap.Difference > 0:
				st.openPlusRun++
				st.openMinusRun = 0
			default:
				st.openMinusRun = 0
				st.openPlusRun = 0
			}
			if st.openMinusRun > st.maxConsecutiveMinus {
				st.maxConsecutiveMinus = st.openMinusRun
			}
			if st.openPlusRun > st.maxConsecutivePlus {
				st.maxConsecutivePlus = st.openPlusRun
			}
		}
	}

	seen := make(map[string]bool, len(current))
	for _, item := range current {
		if seen[item.Code] {
			continue
		}
		seen[item.Code] = true

		st := stats[item.Code]
		status := classify(*st)
		entry := models.ItemAnalysis{
			Code:           item.Code,
			Name:           item.Name,
			Status:         status.Label(),
			HistoryText:    historyText(status, *st),
			Recommendation: recommendation(status),
			RecentTrend:    recentTrend(*st),
		}
		result.PerItem = append(result.PerItem, entry)
		if status.NeedsMonitoring() {
			result.Monitoring = append(result.Monitoring, entry)
		}

		if st.openMinusRun >= 2 {
			result.ConsecutiveRuns.Minus = append(result.ConsecutiveRuns.Minus, models.ConsecutiveRunRecord{
				Code:             item.Code,
				Name:             item.Name,
				ConsecutiveCount: st.openMinusRun,
				Sign:             models.RunMinus,
			})
		}
		if st.openPlusRun >= 2 {
			result.ConsecutiveRuns.Plus = append(result.ConsecutiveRuns.Plus, models.ConsecutiveRunRecord{
				Code:             item.Code,
				Name:             item.Name,
				ConsecutiveCount: st.openPlusRun,
				Sign:             models.RunPlus,
			})
		}
	}

	return result
}

// classify is the priority-ordered decision table; the first matching rule
// wins.
func classify(st itemStats) Status {
	switch {
	case st.count <= 1:
		return StatusFirstTime
	case st.maxConsecutiveMinus >= 3 && st.recentMinusCount == 0 && st.recentPlusCount == 0:
		return StatusShortageStabilized
	case st.maxConsecutiveMinus >= 3 && st.recentPlusCount > 0:
		return StatusShortageReversal
	case st.maxConsecutiveMinus >= 3:
		return StatusChronicShortage
	case st.maxConsecutivePlus >= 3 && st.recentPlusCount == 0 && st.recentMinusCount == 0:
		return StatusOverageStabilized
	case st.maxConsecutivePlus >= 3 && st.recentMinusCount > 0:
		return StatusOverageReversal
	case st.maxConsecutivePlus >= 3:
		return StatusChronicOverage
	case st.minusCount*2 > st.count:
		return StatusFrequentShortage
	case st.minusCount == 0 && st.plusCount == 0:
		return StatusAlwaysExact
	case st.minusCount*10 < st.count && st.plusCount*10 < st.count:
		return StatusRarelyOff
	default:
		return StatusMixed
	}
}

func sortedByDate(history []models.SOHistoryRecord, ascending bool) []models.SOHistoryRecord {
	sorted := make([]models.SOHistoryRecord, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}
