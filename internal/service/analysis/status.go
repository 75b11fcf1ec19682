package analysis

import "fmt"

// Status is the closed set of discrepancy patterns the decision table can
// assign. Keeping it a tagged enum with pure text rendering keeps the table
// auditable independent of wording.
type Status string

const (
	StatusFirstTime          Status = "first_time"
	StatusChronicShortage    Status = "chronic_shortage"
	StatusShortageStabilized Status = "shortage_stabilized"
	StatusShortageReversal   Status = "shortage_reversal"
	StatusChronicOverage     Status = "chronic_overage"
	StatusOverageStabilized  Status = "overage_stabilized"
	StatusOverageReversal    Status = "overage_reversal"
	StatusFrequentShortage   Status = "frequent_shortage"
	StatusAlwaysExact        Status = "always_exact"
	StatusRarelyOff          Status = "rarely_off"
	StatusMixed              Status = "mixed"
)

// Label returns the human-readable status name shown on report screens.
func (s Status) Label() string {
	switch s {
	case StatusFirstTime:
		return "first-time SO item"
	case StatusChronicShortage:
		return "chronic shortage"
	case StatusShortageStabilized:
		return "previously chronic shortage, now stable"
	case StatusShortageReversal:
		return "pattern reversal from shortage"
	case StatusChronicOverage:
		return "chronic overage"
	case StatusOverageStabilized:
		return "previously chronic overage, now stable"
	case StatusOverageReversal:
		return "pattern reversal from overage"
	case StatusFrequentShortage:
		return "frequent shortage"
	case StatusAlwaysExact:
		return "stable, always exact"
	case StatusRarelyOff:
		return "rarely off"
	default:
		return "normal / mixed"
	}
}

// NeedsMonitoring reports whether the status puts an item on the
// operational watch list.
func (s Status) NeedsMonitoring() bool {
	switch s {
	case StatusChronicShortage, StatusChronicOverage, StatusFirstTime,
		StatusShortageReversal, StatusOverageReversal:
		return true
	}
	return false
}

// historyText renders the deterministic history sentence for a status from
// the counted statistics.
func historyText(s Status, st itemStats) string {
	switch s {
	case StatusFirstTime:
		return "First stock opname for this item."
	case StatusChronicShortage:
		return fmt.Sprintf("Short in %d of %d counts with a longest shortage streak of %d.", st.minusCount, st.count, st.maxConsecutiveMinus)
	case StatusShortageStabilized:
		return fmt.Sprintf("Had a shortage streak of %d, but the last %d counts show no discrepancy.", st.maxConsecutiveMinus, st.recentSeen)
	case StatusShortageReversal:
		return fmt.Sprintf("Had a shortage streak of %d, but %d of the last %d counts came up over.", st.maxConsecutiveMinus, st.recentPlusCount, st.recentSeen)
	case StatusChronicOverage:
		return fmt.Sprintf("Over in %d of %d counts with a longest overage streak of %d.", st.plusCount, st.count, st.maxConsecutivePlus)
	case StatusOverageStabilized:
		return fmt.Sprintf("Had an overage streak of %d, but the last %d counts show no discrepancy.", st.maxConsecutivePlus, st.recentSeen)
	case StatusOverageReversal:
		return fmt.Sprintf("Had an overage streak of %d, but %d of the last %d counts came up short.", st.maxConsecutivePlus, st.recentMinusCount, st.recentSeen)
	case StatusFrequentShortage:
		return fmt.Sprintf("Short in %d of %d counts, more than half.", st.minusCount, st.count)
	case StatusAlwaysExact:
		return fmt.Sprintf("Exact in all %d counts.", st.count)
	case StatusRarelyOff:
		return fmt.Sprintf("Off in only %d of %d counts.", st.minusCount+st.plusCount, st.count)
	default:
		return fmt.Sprintf("Short %d and over %d across %d counts.", st.minusCount, st.plusCount, st.count)
	}
}

// recommendation renders the deterministic follow-up advice for a status.
func recommendation(s Status) string {
	switch s {
	case StatusFirstTime:
		return "No history yet; include in the next count to establish a baseline."
	case StatusChronicShortage:
		return "Investigate shrinkage at storage and checkout; keep on the watch list."
	case StatusShortageStabilized:
		return "Keep current handling; remove from the watch list after one more clean count."
	case StatusShortageReversal:
		return "Verify recent receiving entries; the discrepancy direction flipped."
	case StatusChronicOverage:
		return "Check for unrecorded returns or duplicate receiving entries; keep on the watch list."
	case StatusOverageStabilized:
		return "Keep current handling; remove from the watch list after one more clean count."
	case StatusOverageReversal:
		return "Verify recent stock movements; the discrepancy direction flipped."
	case StatusFrequentShortage:
		return "Schedule more frequent partial counts for this item."
	case StatusAlwaysExact:
		return "No action needed."
	case StatusRarelyOff:
		return "No action needed; an occasional recount is enough."
	default:
		return "Recount on the next session and review handling procedures."
	}
}

// recentTrend renders the recent-window tally line.
func recentTrend(st itemStats) string {
	return fmt.Sprintf("last %d counts: %d short, %d over, %d exact", st.recentSeen, st.recentMinusCount, st.recentPlusCount, st.recentNormalCount)
}
