package quality

// Overall quality ratings.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
	QualityUnknown   = "unknown"
)

// Rating band boundaries on the averaged flagged percentage, inclusive
// lower and exclusive upper. These are fixed constants; downstream reports
// depend on exact band edges.
const (
	excellentUpperPct = 10
	goodUpperPct      = 25
	fairUpperPct      = 50
)

// Aggregate combines per-channel SNR and amplitude flagged percentages
// (each in [0,100]) into the categorical overall rating. A nil percentage
// means that metric was not computed; the aggregator requires both and
// returns "unknown" otherwise. Pure function.
func Aggregate(snrPct, ampPct *float64) string {
	if snrPct == nil || ampPct == nil {
		return QualityUnknown
	}
	avg := (*snrPct + *ampPct) / 2
	switch {
	case avg < excellentUpperPct:
		return QualityExcellent
	case avg < goodUpperPct:
		return QualityGood
	case avg < fairUpperPct:
		return QualityFair
	default:
		return QualityPoor
	}
}

// OverallQuality rates a channel from its metric statistics; either side
// missing yields "unknown".
func OverallQuality(snr, amp *MetricStats) string {
	if snr == nil || amp == nil {
		return QualityUnknown
	}
	return Aggregate(&snr.PercentageFlagged, &amp.PercentageFlagged)
}
