package experiment

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
)

// folds splits n cases into k folds and returns the held out indices of each.
// When labels are given the folds are stratified, each class is dealt round robin
// after a seeded shuffle so that every fold gets its share of every class.
func folds(n int, labels []string, k int, seed int64) ([][]int, error) {
	if n < 2 {
		return nil, fmt.Errorf("cannot cross validate %d cases", n)
	}
	if k > n {
		k = n
	}
	groups := map[string][]int{"": nil}
	if labels != nil {
		groups = make(map[string][]int)
	}
	for i := 0; i < n; i++ {
		g := ""
		if labels != nil {
			g = labels[i]
		}
		groups[g] = append(groups[g], i)
	}
	keys := make([]string, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Strings(keys)

	rnd := rand.New(rand.NewSource(uint64(seed)))
	ff := make([][]int, k)
	next := 0
	for _, g := range keys {
		idx := groups[g]
		for _, j := range rnd.Perm(len(idx)) {
			ff[next%k] = append(ff[next%k], idx[j])
			next++
		}
	}
	for _, f := range ff {
		sort.Ints(f)
	}
	return ff, nil
}

// complement returns the indices in [0,n) that are not in the given sorted fold.
func complement(n int, fold []int) []int {
	out := make([]int, 0, n-len(fold))
	j := 0
	for i := 0; i < n; i++ {
		if j < len(fold) && fold[j] == i {
			j++
			continue
		}
		out = append(out, i)
	}
	return out
}
