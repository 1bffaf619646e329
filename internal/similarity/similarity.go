package similarity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Mode selects how two strings are compared.
type Mode int

const (
	// Full compares the two strings as wholes.
	Full Mode = iota
	// Partial scores the shorter string against its best-aligned window of the longer one.
	Partial
)

// Filler is the sentinel rune used to lateralize catalog titles.
const Filler = '#'

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Partial:
		return "partial"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps "full" or "partial" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "full", "":
		return Full, nil
	case "partial":
		return Partial, nil
	default:
		return Full, fmt.Errorf("unknown similarity mode: %s", s)
	}
}

// Similarity returns a score in [0, 100] for a and b under mode.
func Similarity(a, b string, mode Mode) float64 {
	if mode == Partial {
		return PartialRatio(a, b)
	}
	return Ratio(a, b)
}

// Ratio is the normalized Indel similarity 2*LCS/(len(a)+len(b)) scaled to 100,
// counted in runes. Two empty strings score 100.
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

// PartialRatio returns the best Ratio between the shorter string and every window of
// the longer string with the shorter's length, including windows clipped at either end.
// Strings of equal length are aligned both ways.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}
	if len(short) == len(long) {
		return max(bestWindow(short, long), bestWindow(long, short))
	}
	return bestWindow(short, long)
}

func bestWindow(short, long []rune) float64 {
	best := 0.0
	for start := 1 - len(short); start < len(long); start++ {
		lo := max(start, 0)
		hi := min(start+len(short), len(long))
		score := ratioRunes(short, long[lo:hi])
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	lcs := edlib.LCS(string(a), string(b))
	return 200 * float64(lcs) / float64(total)
}

// Lateralize right-pads s with Filler up to n runes. Longer strings are returned as is.
func Lateralize(s string, n int) string {
	missing := n - len([]rune(s))
	if missing <= 0 {
		return s
	}
	return s + strings.Repeat(string(Filler), missing)
}

// Shorten keeps the first n runes of s.
func Shorten(s string, n int) string {
	r := []rune(s)
	if n < 0 {
		n = 0
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Scored is one ranked choice from Extract.
type Scored struct {
	Index int
	Score float64
}

// Extract scores query against every choice and returns up to limit results, best
// first. Equal scores keep their input order. A limit <= 0 returns every choice.
func Extract(query string, choices []string, mode Mode, limit int) []Scored {
	scored := make([]Scored, len(choices))
	for i, choice := range choices {
		scored[i] = Scored{Index: i, Score: Similarity(query, choice, mode)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
