package board

import (
	"github.com/perch-labs/noticeboard/internal/domain"
	"github.com/perch-labs/noticeboard/internal/validate"
)

// Text and rating bounds, inclusive on both ends. Lengths are in bytes.
const (
	TitleMinLen = 10
	TitleMaxLen = 100
	BodyMinLen  = 25
	BodyMaxLen  = 1000
	RatingMin   = 1
	RatingMax   = 10
)

// castVote applies one vote to agg. Each principal may contribute at most one
// score per aggregate for the record's lifetime, regardless of the order votes
// arrive in. The average is always recomputed from the running total with
// integer floor division; blending the previous average back in would
// accumulate rounding error across an unbounded number of votes and break
// reconstructibility from (TotalScore, VoteCount).
func castVote(agg *domain.VoteAggregate, p domain.Principal, score int) error {
	if err := validate.Range("rating", score, RatingMin, RatingMax); err != nil {
		return err
	}
	if agg.HasVoted(p) {
		return ErrAlreadyVoted
	}
	agg.TotalScore += uint64(score)
	agg.VoteCount++
	agg.Voters[p] = struct{}{}
	agg.Average = agg.TotalScore / agg.VoteCount
	return nil
}

// currentAverage returns the last computed average, 0 when no votes have been
// cast. Callers that need to distinguish "no votes" from "average 0" should
// also consult the vote count.
func currentAverage(agg *domain.VoteAggregate) uint64 {
	if agg == nil {
		return 0
	}
	return agg.Average
}
