package cluster_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/statmech/internal/cluster"
)

func TestLabel_UShape(t *testing.T) {
	// row-major, y = 0 first:
	//
	//	1 0 1
	//	1 0 1
	//	1 1 1
	//
	// the two arms meet only in the last row, forcing a label merge.
	occ := []bool{
		true, false, true,
		true, false, true,
		true, true, true,
	}
	labels, count, err := cluster.Label(occ, 3)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	for s, on := range occ {
		if on {
			require.Equal(t, 1, labels[s])
		} else {
			require.Zero(t, labels[s])
		}
	}
}

func TestLabel_Invalid(t *testing.T) {
	_, _, err := cluster.Label(make([]bool, 8), 3)
	require.ErrorIs(t, err, cluster.ErrInvalidSize)

	_, _, err = cluster.Label(nil, 0)
	require.ErrorIs(t, err, cluster.ErrInvalidSize)
}

func TestLabel_AgreesWithNewmanZiff(t *testing.T) {
	for seed := int64(1); seed <= 4; seed++ {
		p, err := cluster.New(10, seed)
		require.NoError(t, err)
		for i := 0; i < 55; i++ {
			p.AddRandomSite()
		}

		occ := p.Occupancy()
		labels, count, err := cluster.Label(occ, 10)
		require.NoError(t, err)
		sizes := cluster.Sizes(labels, count)

		for s, on := range occ {
			if !on {
				continue
			}
			require.Equal(t, p.ClusterSize(s), sizes[labels[s]], "site %d", s)
		}

		var hk []int
		for k := 1; k <= count; k++ {
			hk = append(hk, sizes[k])
		}
		var nz []int
		for size, n := range p.ClusterCounts() {
			for i := 0; i < n; i++ {
				nz = append(nz, size)
			}
		}
		sort.Ints(hk)
		sort.Ints(nz)
		require.Equal(t, nz, hk)
	}
}
