package table

import (
	"math"
	"sort"
)

// Group is one aggregated key and its mean value
type Group struct {
	Key   string
	Value float64
}

// GroupMean averages values per key. NaN values are ignored and groups with
// no valid value are NaN. Null keys are dropped. Groups keep the order in
// which their key first appears.
func GroupMean(keys []string, values []float64) []Group {
	type acc struct {
		sum   float64
		count int
	}

	index := make(map[string]int)
	var order []string
	var accs []acc

	for i, k := range keys {
		if i >= len(values) {
			break
		}
		if IsNull(k) {
			continue
		}
		pos, ok := index[k]
		if !ok {
			pos = len(order)
			index[k] = pos
			order = append(order, k)
			accs = append(accs, acc{})
		}
		if v := values[i]; !math.IsNaN(v) {
			accs[pos].sum += v
			accs[pos].count++
		}
	}

	groups := make([]Group, len(order))
	for i, k := range order {
		mean := math.NaN()
		if accs[i].count > 0 {
			mean = accs[i].sum / float64(accs[i].count)
		}
		groups[i] = Group{Key: k, Value: mean}
	}
	return groups
}

// SortDescending orders groups by value, largest first. The sort is stable
// and NaN groups are dropped.
func SortDescending(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if !math.IsNaN(g.Value) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// Head returns at most n leading groups
func Head(groups []Group, n int) []Group {
	if n < 0 {
		n = 0
	}
	if len(groups) > n {
		return groups[:n]
	}
	return groups
}

// UniqueSorted returns the distinct non-null values in ascending order
func UniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if IsNull(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Pivot averages values into a rows x columns matrix. Cells with no valid
// value are NaN.
func Pivot(rowKeys, colKeys []string, values []float64, rows, cols []string) [][]float64 {
	rowIdx := make(map[string]int, len(rows))
	for i, r := range rows {
		rowIdx[r] = i
	}
	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i
	}

	sums := make([][]float64, len(rows))
	counts := make([][]int, len(rows))
	for i := range rows {
		sums[i] = make([]float64, len(cols))
		counts[i] = make([]int, len(cols))
	}

	for i := range rowKeys {
		if i >= len(colKeys) || i >= len(values) {
			break
		}
		r, ok := rowIdx[rowKeys[i]]
		if !ok {
			continue
		}
		c, ok := colIdx[colKeys[i]]
		if !ok || math.IsNaN(values[i]) {
			continue
		}
		sums[r][c] += values[i]
		counts[r][c]++
	}

	out := make([][]float64, len(rows))
	for i := range rows {
		out[i] = make([]float64, len(cols))
		for j := range cols {
			if counts[i][j] == 0 {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = sums[i][j] / float64(counts[i][j])
		}
	}
	return out
}
