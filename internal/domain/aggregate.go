package domain

// VoteAggregate holds the running vote state for a single catalog entry.
//
// Invariants: len(Voters) == VoteCount, and Average is always recomputed as
// floor(TotalScore/VoteCount) from the running total. The aggregate is fully
// reconstructible from (TotalScore, VoteCount) alone.
type VoteAggregate struct {
	TotalScore uint64
	VoteCount  uint64
	Voters     map[Principal]struct{}
	Average    uint64
}

// NewVoteAggregate returns an empty aggregate ready to accept votes.
func NewVoteAggregate() *VoteAggregate {
	return &VoteAggregate{Voters: make(map[Principal]struct{})}
}

// HasVoted reports whether p already contributed a score.
func (a *VoteAggregate) HasVoted(p Principal) bool {
	_, ok := a.Voters[p]
	return ok
}

// Clone returns an independent copy of the aggregate, nil for nil.
func (a *VoteAggregate) Clone() *VoteAggregate {
	if a == nil {
		return nil
	}
	voters := make(map[Principal]struct{}, len(a.Voters))
	for p := range a.Voters {
		voters[p] = struct{}{}
	}
	return &VoteAggregate{
		TotalScore: a.TotalScore,
		VoteCount:  a.VoteCount,
		Voters:     voters,
		Average:    a.Average,
	}
}
