package titlematch

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"
)

var (
	numberRegex = regexp.MustCompile(`\b(\d+)\b`)
	yearRegex   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// Confidence buckets a similarity score.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // < 0.70
	ConfidenceLow                      // >= 0.70
	ConfidenceMedium                   // >= 0.85
	ConfidenceHigh                     // >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

func confidenceFor(score float64) Confidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Candidate is a searchable catalogue entry.
type Candidate struct {
	ID    string
	Title string
	Year  int
}

// Match is a scored candidate.
type Match struct {
	Candidate
	Score      float64
	Confidence Confidence
}

// Search scores every candidate against query and returns the best matches
// with at least low confidence, highest score first. Ties keep candidate
// order. limit <= 0 means no limit.
func Search(query string, candidates []Candidate, limit int) []Match {
	q, year := splitYear(Normalize(query))
	if q == "" {
		return nil
	}
	qNums := numberRegex.FindAllString(q, -1)

	var matches []Match
	for _, c := range candidates {
		score := Score(q, Normalize(c.Title), qNums)
		if year != 0 && c.Year != 0 {
			if c.Year == year {
				score = min(score*1.05, 1.0)
			} else {
				score *= 0.9
			}
		}
		conf := confidenceFor(score)
		if conf == ConfidenceNone {
			continue
		}
		matches = append(matches, Match{Candidate: c, Score: score, Confidence: conf})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Score returns the similarity of two normalized titles. Jaro-Winkler favours
// shared prefixes; a query contained in the title as whole words scores at
// least 0.9. Sequence numbers in the query must agree with the title.
func Score(query, title string, queryNums []string) float64 {
	if query == "" || title == "" {
		return 0
	}
	score := float64(edlib.JaroWinklerSimilarity(query, title))
	if strings.Contains(" "+title+" ", " "+query+" ") {
		score = max(score, 0.9)
	}
	return adjustForNumbers(score, queryNums, numberRegex.FindAllString(title, -1))
}

// splitYear removes a trailing release year from a normalized query.
func splitYear(q string) (string, int) {
	loc := yearRegex.FindStringIndex(q)
	if loc == nil || loc[1] != len(q) || loc[0] == 0 {
		return q, 0
	}
	year, _ := strconv.Atoi(q[loc[0]:loc[1]])
	return strings.TrimSpace(q[:loc[0]]), year
}

func adjustForNumbers(score float64, queryNums, titleNums []string) float64 {
	if len(queryNums) == 0 {
		return score
	}
	if len(titleNums) == 0 {
		return score * 0.85
	}
	have := make(map[string]bool, len(titleNums))
	for _, n := range titleNums {
		have[n] = true
	}
	for _, n := range queryNums {
		if have[n] {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}
