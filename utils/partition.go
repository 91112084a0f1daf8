package utils

// PartitionMap splits the index range [0,MaxIndex) into ParallelDegree
// contiguous buckets of near-equal size, mirroring
// Notargets-gocfd/utils/parallel_utils.go's PartitionMap. The
// conjugate-gradient solver, the one fork-join user in this module, builds
// one per solve and reuses its split for every vector update and partial
// inner product.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	partitions     [][2]int // [begin,end) per bucket
}

// NewPartitionMap builds a PartitionMap for maxIndex elements spread across
// parallelDegree buckets. parallelDegree is clamped to at least 1 and to at
// most maxIndex (a bucket is never empty when elements remain).
func NewPartitionMap(parallelDegree, maxIndex int) *PartitionMap {
	if parallelDegree < 1 {
		parallelDegree = 1
	}
	if maxIndex < 0 {
		maxIndex = 0
	}
	if parallelDegree > maxIndex && maxIndex > 0 {
		parallelDegree = maxIndex
	}
	pm := &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: parallelDegree,
		partitions:     make([][2]int, parallelDegree),
	}
	base := maxIndex / parallelDegree
	rem := maxIndex % parallelDegree
	cursor := 0
	for n := 0; n < parallelDegree; n++ {
		size := base
		if n < rem {
			size++
		}
		pm.partitions[n] = [2]int{cursor, cursor + size}
		cursor += size
	}
	return pm
}

// Bucket returns the [begin,end) range owned by bucket n.
func (pm *PartitionMap) Bucket(n int) (begin, end int) {
	b := pm.partitions[n]
	return b[0], b[1]
}

// BucketLen returns end-begin for bucket n.
func (pm *PartitionMap) BucketLen(n int) int {
	b := pm.partitions[n]
	return b[1] - b[0]
}
