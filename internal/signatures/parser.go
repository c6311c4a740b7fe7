package signatures

import (
	"errors"
	"strings"
)

// ErrWindowNotReady is returned when the token stream does not look like an
// open agency window showing signature results.
var ErrWindowNotReady = errors.New("agency window is not open")

const (
	StartMarker = "Showing 30 results"
	EndMarker   = "Signatures in system"

	nameDelimiter = " <color="
	jumpsSuffix   = " jumps"
	sigsSuffix    = " Signatures in system"

	maxCount = 1 << 31
)

// Parse reads the signature records between the start and end markers of a
// flattened agency window. Every record is 3 tokens: the system name with
// its color markup, "<n> jumps" and "<n> Signatures in system".
func Parse(tokens []string) (Snapshot, error) {
	var out Snapshot

	start := indexOf(tokens, StartMarker, 0)
	if start < 0 {
		return out, ErrWindowNotReady
	}
	start++
	end := indexOf(tokens, EndMarker, start)
	if end < 0 {
		return out, ErrWindowNotReady
	}

	region := tokens[start:end]
	for i := 0; i < len(region); i += 3 {
		if i+2 >= len(region) {
			out.dropped++
			break
		}
		name, _, _ := strings.Cut(region[i], nameDelimiter)
		jumps, jumpsOk := leadingInt(beforeSuffix(region[i+1], jumpsSuffix))
		sigs, sigsOk := leadingInt(beforeSuffix(region[i+2], sigsSuffix))
		if !jumpsOk || !sigsOk || jumps < 0 || sigs < 0 {
			out.dropped++
			continue
		}
		out.Set(name, Entry{Jumps: jumps, Sigs: sigs})
	}

	return out, nil
}

func indexOf(tokens []string, marker string, from int) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i] == marker {
			return i
		}
	}
	return -1
}

func beforeSuffix(text, suffix string) string {
	before, _, _ := strings.Cut(text, suffix)
	return before
}

// leadingInt parses the integer at the start of text and ignores whatever
// follows it, so "1 jump" is 1 and "abc" is not a number.
func leadingInt(text string) (int, bool) {
	text = strings.TrimLeft(text, " \t\n\r")
	negative := false
	if text != "" && (text[0] == '-' || text[0] == '+') {
		negative = text[0] == '-'
		text = text[1:]
	}

	n := 0
	digits := 0
	for _, c := range text {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		digits++
		if n > maxCount {
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}
