package estimator

import (
	"math/rand"
	"sort"
)

// node is a regression tree node; a leaf has left == nil.
type node struct {
	feature   int
	threshold float64
	value     float64
	left      *node
	right     *node
}

func (n *node) predict(x []float64) float64 {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// treeBuilder grows one fully expanded tree minimising squared error.
// Features are visited in a random order per node so ties between equally
// good splits are broken by the tree's own seed.
type treeBuilder struct {
	x   [][]float64
	y   []float64
	rng *rand.Rand
}

func (b *treeBuilder) build(idx []int) *node {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	leaf := &node{value: sum / n}
	parentSSE := sumSq - sum*sum/n
	if len(idx) < 2 || parentSSE <= 1e-12*(1+sumSq) {
		return leaf
	}

	bestFeature, bestThreshold := -1, 0.0
	bestSSE := parentSSE
	order := make([]int, len(idx))

	for _, f := range b.rng.Perm(len(b.x[0])) {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool { return b.x[order[a]][f] < b.x[order[c]][f] })

		leftSum, leftSq := 0.0, 0.0
		for k := 0; k < len(order)-1; k++ {
			yi := b.y[order[k]]
			leftSum += yi
			leftSq += yi * yi

			cur, next := b.x[order[k]][f], b.x[order[k+1]][f]
			if cur == next {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			rightSum := sum - leftSum
			sse := (leftSq - leftSum*leftSum/nl) + (sumSq - leftSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				if bestThreshold >= next {
					bestThreshold = cur
				}
			}
		}
	}
	if bestFeature < 0 {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	leaf.feature = bestFeature
	leaf.threshold = bestThreshold
	leaf.left = b.build(left)
	leaf.right = b.build(right)
	return leaf
}

// forest averages bootstrap-trained trees.
type forest struct {
	trees []*node
}

func fitForest(x [][]float64, y []float64, trees int, seed int64) *forest {
	rng := rand.New(rand.NewSource(seed))
	f := &forest{trees: make([]*node, trees)}
	for t := range f.trees {
		treeRng := rand.New(rand.NewSource(rng.Int63()))
		sample := make([]int, len(y))
		for i := range sample {
			sample[i] = treeRng.Intn(len(y))
		}
		b := &treeBuilder{x: x, y: y, rng: treeRng}
		f.trees[t] = b.build(sample)
	}
	return f
}

func (f *forest) predict(x []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}
