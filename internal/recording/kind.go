package recording

import "strings"

// SignalKind identifies the physiological modality of a channel. Kinds are
// assigned once at discovery time from the channel label so that downstream
// feature extraction can dispatch on an enumerated tag instead of repeated
// free-text pattern matches.
type SignalKind int

const (
	KindUnknown SignalKind = iota
	KindECG
	KindRSP
	KindEDA
	KindBP
	KindEMG
)

// String returns the short label for the signal kind.
func (k SignalKind) String() string {
	switch k {
	case KindECG:
		return "ecg"
	case KindRSP:
		return "rsp"
	case KindEDA:
		return "eda"
	case KindBP:
		return "bp"
	case KindEMG:
		return "emg"
	default:
		return "unknown"
	}
}

// kindPatterns maps case-folded label substrings to signal kinds. Order
// matters: the first pattern that matches wins.
var kindPatterns = []struct {
	substr string
	kind   SignalKind
}{
	{"ecg", KindECG},
	{"ekg", KindECG},
	{"rsp", KindRSP},
	{"resp", KindRSP},
	{"eda", KindEDA},
	{"gsr", KindEDA},
	{"blood pressure", KindBP},
	{"nibp", KindBP},
	{"bp", KindBP},
	{"emg", KindEMG},
}

// ClassifyKind maps a channel label to its signal kind by case-insensitive
// substring match.
func ClassifyKind(name string) SignalKind {
	lower := strings.ToLower(name)
	for _, p := range kindPatterns {
		if strings.Contains(lower, p.substr) {
			return p.kind
		}
	}
	return KindUnknown
}
