package utxo

import (
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-ledger/config"
)

// Selector picks outputs from candidates to cover target. It returns the
// picked total and outputs. When the candidates cannot cover target it
// returns their full total, which is then below target.
type Selector func(candidates []*UTXO, target uint64) (uint64, []*UTXO)

// SelectorByName returns the selector configured by utxo.selection.
func SelectorByName(name string) (Selector, error) {
	switch name {
	case config.SelectAccumulate, "":
		return SelectAccumulate, nil
	case config.SelectLeastChange:
		return SelectLeastChange, nil
	default:
		return nil, fmt.Errorf("unknown coin selection %q", name)
	}
}

// SelectAccumulate takes candidates in the order given until their total
// reaches target.
func SelectAccumulate(candidates []*UTXO, target uint64) (uint64, []*UTXO) {
	var total uint64
	var picked []*UTXO
	for _, u := range candidates {
		if total >= target {
			break
		}
		picked = append(picked, u)
		total += u.Value
	}
	return total, picked
}

// SelectLeastChange tries two strategies:
//  1. Single UTXO: the smallest single UTXO that covers the target (minimizes inputs).
//  2. Largest-first accumulation: greedily adds the largest UTXOs until the target is met.
//
// Returns the strategy that produces the least change (waste).
func SelectLeastChange(candidates []*UTXO, target uint64) (uint64, []*UTXO) {
	// Filter out zero-value UTXOs and sort by value ascending.
	sorted := make([]*UTXO, 0, len(candidates))
	for _, u := range candidates {
		if u.Value > 0 {
			sorted = append(sorted, u)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})

	// Strategy 1: smallest single UTXO that covers the target.
	var single *UTXO
	for _, u := range sorted {
		if u.Value >= target {
			single = u
			break // Sorted ascending, first match is smallest.
		}
	}

	// Strategy 2: largest-first accumulation.
	var accum []*UTXO
	var total uint64
	for i := len(sorted) - 1; i >= 0; i-- {
		accum = append(accum, sorted[i])
		total += sorted[i].Value
		if total >= target {
			break
		}
	}

	// Prefer whichever produces less change.
	if single != nil && single.Value <= total {
		return single.Value, []*UTXO{single}
	}
	return total, accum
}
