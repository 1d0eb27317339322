package queue

import "github.com/fluxqueue/fluxqueue/pkg/types"

// text length bounds for classification, ported from the source's
// check_if_text_buf constants.
const (
	minTextLen = 8
	maxTextLen = 1 << 20
)

// ClassifyText reports whether buf looks like ASCII or UTF-8 text, using
// the same run-classification heuristic as AFL's check_if_text_buf: walk
// the buffer counting plausible ASCII bytes and plausible UTF-8 sequences,
// then majority-vote between the two run counts.
//
// The source's length precondition reads `len < MIN || len < MAX`, which
// can never reject an over-long buffer — almost certainly a typo for
// `len < MIN || len > MAX`. This implements the corrected predicate.
func ClassifyText(buf []byte) types.TextKind {
	n := len(buf)
	if n < minTextLen || n > maxTextLen {
		return types.TextKindBinary
	}

	asciiRuns, utf8Runs := 0, 0
	i := 0
	for i < n {
		b := buf[i]
		switch {
		case b == '\t' || b == '\n' || b == '\r' || (b >= 0x20 && b < 0x7f):
			asciiRuns++
			i++
		case b>>5 == 0x6 && i+1 < n && isCont(buf[i+1]):
			utf8Runs++
			i += 2
		case b>>4 == 0xe && i+2 < n && isCont(buf[i+1]) && isCont(buf[i+2]):
			utf8Runs++
			i += 3
		case b>>3 == 0x1e && i+3 < n && isCont(buf[i+1]) && isCont(buf[i+2]) && isCont(buf[i+3]):
			utf8Runs++
			i += 4
		default:
			return types.TextKindBinary
		}
	}

	if utf8Runs > asciiRuns {
		return types.TextKindUTF8
	}
	return types.TextKindASCII
}

func isCont(b byte) bool { return b&0xc0 == 0x80 }
