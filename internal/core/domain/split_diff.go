package domain

// SplitChange pairs the old and new version of a transfer split whose amount
// changed while keeping the same target account.
type SplitChange struct {
	Old SplitLine
	New SplitLine
}

// SplitDiff describes how the transfer splits of a transaction changed across
// a ReplaceSplits call. It is the input to mirror synchronization: added
// splits need a new mirror, removed splits need their mirror deleted, changed
// splits need the mirror amount brought back in lock-step.
//
// Transfer splits are matched by target account, which validateSplits
// guarantees is unique within one transaction. A retargeted transfer shows up
// as a removal plus an addition.
type SplitDiff struct {
	Added   []SplitLine
	Removed []SplitLine
	Changed []SplitChange

	// Whole-set change counts, for the SplitsUpdated event descriptor.
	AddedCount    int
	RemovedCount  int
	ModifiedCount int
}

// HasMirrorWork reports whether the diff requires any mirror synchronization.
func (d *SplitDiff) HasMirrorWork() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// diffSplits computes the transfer-split diff between the old and new split
// sets, plus whole-set change counts. Both sets are treated as unordered.
func diffSplits(oldSplits, newSplits []SplitLine) *SplitDiff {
	d := &SplitDiff{}

	for _, n := range newSplits {
		if !n.IsTransfer() {
			continue
		}
		o, ok := findTransferSplit(oldSplits, n.TransferAccountID)
		switch {
		case !ok:
			d.Added = append(d.Added, n)
		case !o.Amount.Equal(n.Amount):
			d.Changed = append(d.Changed, SplitChange{Old: o, New: n})
		}
	}
	for _, o := range oldSplits {
		if !o.IsTransfer() {
			continue
		}
		if _, ok := findTransferSplit(newSplits, o.TransferAccountID); !ok {
			d.Removed = append(d.Removed, o)
		}
	}

	d.AddedCount = len(d.Added) + countUnmatchedCategorySplits(newSplits, oldSplits)
	d.RemovedCount = len(d.Removed) + countUnmatchedCategorySplits(oldSplits, newSplits)
	d.ModifiedCount = len(d.Changed)
	return d
}

// countUnmatchedCategorySplits counts category splits in a that have no
// value-equal counterpart in b. Matching is by (category, amount, memo) with
// multiset semantics.
func countUnmatchedCategorySplits(a, b []SplitLine) int {
	remaining := make(map[string]int)
	for _, s := range b {
		if !s.IsTransfer() {
			remaining[categorySplitKey(s)]++
		}
	}
	count := 0
	for _, s := range a {
		if s.IsTransfer() {
			continue
		}
		key := categorySplitKey(s)
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		count++
	}
	return count
}

func categorySplitKey(s SplitLine) string {
	return s.CategoryID + "|" + s.Amount.String() + "|" + s.Memo
}
