package normalize

import (
	"fmt"
	"sort"
)

// Artifact is one raw result payload in whichever shape the source produced.
// The closed set of variants is matched exhaustively by Rows, so adding a
// format means adding a case there, not a string check somewhere else.
type Artifact interface {
	artifact()
}

// JSONArtifact is a structured classification payload (object with a
// "classification" list).
type JSONArtifact []byte

// CSVArtifact is a semicolon-delimited export with named header columns.
type CSVArtifact string

// HTMLArtifact is a page containing a classification table located by
// header keywords.
type HTMLArtifact string

// ProviderArtifact is an already-typed result set from the timing provider,
// keyed by car number, with an optional lap-position trace used when the
// provider carries no official positions.
type ProviderArtifact struct {
	Rows  []ProviderRow
	Trace LapTrace
}

func (JSONArtifact) artifact()     {}
func (CSVArtifact) artifact()      {}
func (HTMLArtifact) artifact()     {}
func (ProviderArtifact) artifact() {}

// Rows normalizes one artifact into canonical rows. An empty result with a
// nil error is not a failure - it means the payload held no usable
// classification and the caller should try the next candidate.
func Rows(a Artifact) ([]Row, error) {
	switch v := a.(type) {
	case JSONArtifact:
		return jsonRows(v)
	case CSVArtifact:
		return csvRows(string(v)), nil
	case HTMLArtifact:
		return htmlRows(string(v)), nil
	case ProviderArtifact:
		return DerivePositions(providerRows(v.Rows), v.Trace), nil
	default:
		return nil, fmt.Errorf("normalize: unknown artifact type %T", a)
	}
}

// Grade ranks candidate artifacts for one session. Endurance events often
// expose several classification files; official always wins.
type Grade int

const (
	GradeUnranked Grade = iota
	GradeUnofficial
	GradeProvisional
	GradeOfficial
)

// Candidate pairs an artifact with its grade.
type Candidate struct {
	Grade    Grade
	Artifact Artifact
}

// FirstRows normalizes candidates best grade first and returns the rows of
// the first one that yields any. Parse failures and empty payloads both just
// move on to the next candidate. An error comes back only when every
// candidate failed to parse; an empty result with a nil error means the
// sources simply have nothing yet.
func FirstRows(candidates []Candidate) ([]Row, error) {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Grade > ranked[j].Grade
	})

	var firstErr error
	sawClean := false
	for _, c := range ranked {
		rows, err := Rows(c.Artifact)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sawClean = true
		if len(rows) > 0 {
			return rows, nil
		}
	}
	if !sawClean && firstErr != nil {
		return nil, firstErr
	}
	return nil, nil
}
