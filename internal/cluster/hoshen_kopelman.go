package cluster

import "fmt"

// Label assigns cluster labels to a fixed row-major occupancy with the
// Hoshen-Kopelman raster scan. Labels are 1..k in order of first appearance;
// empty sites get 0. Connectivity is the four open-boundary neighbours.
//
// Time: O(N α(N)). Memory: O(N).
func Label(occupied []bool, L int) ([]int, int, error) {
	if L <= 0 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrInvalidSize, L)
	}
	if len(occupied) != L*L {
		return nil, 0, fmt.Errorf("%w: occupancy has %d sites, want %d", ErrInvalidSize, len(occupied), L*L)
	}

	labels := make([]int, L*L)
	// np[k] links provisional label k to a smaller label; np[k] == k is proper.
	np := []int{0}

	proper := func(k int) int {
		root := k
		for np[root] != root {
			root = np[root]
		}
		for np[k] != root {
			next := np[k]
			np[k] = root
			k = next
		}
		return root
	}

	for y := 0; y < L; y++ {
		for x := 0; x < L; x++ {
			s := x + y*L
			if !occupied[s] {
				continue
			}
			left, down := 0, 0
			if x > 0 {
				left = labels[s-1]
			}
			if y > 0 {
				down = labels[s-L]
			}
			switch {
			case left == 0 && down == 0:
				k := len(np)
				np = append(np, k)
				labels[s] = k
			case left != 0 && down != 0:
				a, b := proper(left), proper(down)
				lo, hi := min(a, b), max(a, b)
				np[hi] = lo
				labels[s] = lo
			case left != 0:
				labels[s] = left
			default:
				labels[s] = down
			}
		}
	}

	// relabel proper roots densely in order of first appearance
	dense := make([]int, len(np))
	count := 0
	for s, k := range labels {
		if k == 0 {
			continue
		}
		r := proper(k)
		if dense[r] == 0 {
			count++
			dense[r] = count
		}
		labels[s] = dense[r]
	}
	return labels, count, nil
}

// Sizes returns the size of each label produced by Label; index 0 is unused.
func Sizes(labels []int, count int) []int {
	sizes := make([]int, count+1)
	for _, k := range labels {
		if k > 0 {
			sizes[k]++
		}
	}
	return sizes
}
