// Package types defines small value types shared across fluxqueue's
// scheduling packages.
package types

// EdgeID identifies a control-flow edge in the target's coverage map.
type EdgeID uint32

// ScheduleType selects the power-schedule used to compute a seed's
// performance score.
type ScheduleType int

const (
	ScheduleExplore ScheduleType = iota
	ScheduleSeek
	ScheduleExploit
	ScheduleCOE
	ScheduleFast
	ScheduleLin
	ScheduleQuad
	ScheduleMMOpt
	ScheduleRare
)

// ParseScheduleType maps a config string to a ScheduleType.
func ParseScheduleType(s string) (ScheduleType, bool) {
	switch s {
	case "explore":
		return ScheduleExplore, true
	case "seek":
		return ScheduleSeek, true
	case "exploit":
		return ScheduleExploit, true
	case "coe":
		return ScheduleCOE, true
	case "fast":
		return ScheduleFast, true
	case "lin":
		return ScheduleLin, true
	case "quad":
		return ScheduleQuad, true
	case "mmopt":
		return ScheduleMMOpt, true
	case "rare":
		return ScheduleRare, true
	default:
		return 0, false
	}
}

func (s ScheduleType) String() string {
	switch s {
	case ScheduleExplore:
		return "explore"
	case ScheduleSeek:
		return "seek"
	case ScheduleExploit:
		return "exploit"
	case ScheduleCOE:
		return "coe"
	case ScheduleFast:
		return "fast"
	case ScheduleLin:
		return "lin"
	case ScheduleQuad:
		return "quad"
	case ScheduleMMOpt:
		return "mmopt"
	case ScheduleRare:
		return "rare"
	default:
		return "unknown"
	}
}

// TieBreak selects the policy used to break ties between candidate seeds
// that cover the same frontier edge in the set-cover scheduler.
type TieBreak int

const (
	TieBreakPriority TieBreak = iota
	TieBreakLatest
	TieBreakFastest
	TieBreakCoveringLatestFrontier
)

// ParseTieBreak maps a config string to a TieBreak.
func ParseTieBreak(s string) (TieBreak, bool) {
	switch s {
	case "priority":
		return TieBreakPriority, true
	case "latest":
		return TieBreakLatest, true
	case "fastest":
		return TieBreakFastest, true
	case "covering_latest_frontier":
		return TieBreakCoveringLatestFrontier, true
	default:
		return 0, false
	}
}

// TextKind classifies a testcase's byte content, matching AFL's
// check_if_text heuristic.
type TextKind int

const (
	TextKindBinary TextKind = iota
	TextKindASCII
	TextKindUTF8
)
