// Package estimator predicts a listing price from its rooms, area, floor,
// year built and region with a random forest.
package estimator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"listings-analytics/models"
)

// ErrNoTrainingData is returned when no listing has a price.
var ErrNoTrainingData = errors.New("estimator: no priced listings to train on")

// Options controls training.
type Options struct {
	Trees    int
	TestSize float64
	Seed     int64
}

// DefaultOptions matches the dashboard's model.
func DefaultOptions() Options {
	return Options{Trees: 100, TestSize: 0.2, Seed: 42}
}

// Metrics are hold-out errors. Nil when the hold-out set is too small.
type Metrics struct {
	TrainRows int      `json:"train_rows"`
	TestRows  int      `json:"test_rows"`
	MAE       *float64 `json:"mae"`
	R2        *float64 `json:"r2"`
}

// Model is a fitted price estimator. It is safe for concurrent Predict calls.
type Model struct {
	pre     *preprocessor
	forest  *forest
	Metrics Metrics
}

// Train fits a model on listings with a known price.
func Train(listings []models.JoinedListing, opts Options) (*Model, error) {
	var rows []Features
	var prices []float64
	for _, l := range listings {
		if p, ok := l.Price(); ok && !math.IsNaN(p) {
			rows = append(rows, FeaturesOf(l))
			prices = append(prices, p)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoTrainingData
	}

	train, test := split(len(rows), opts.TestSize, opts.Seed)
	trainRows := pick(rows, train)
	trainY := pickFloats(prices, train)

	pre := fitPreprocessor(trainRows)
	x := make([][]float64, len(trainRows))
	for i, r := range trainRows {
		x[i] = pre.transform(r)
	}

	trees := opts.Trees
	if trees <= 0 {
		trees = DefaultOptions().Trees
	}
	m := &Model{pre: pre, forest: fitForest(x, trainY, trees, opts.Seed)}
	m.Metrics = m.evaluate(pick(rows, test), pickFloats(prices, test))
	m.Metrics.TrainRows = len(train)
	return m, nil
}

// Predict returns the estimated price for one listing.
func (m *Model) Predict(f Features) float64 {
	return m.forest.predict(m.pre.transform(f))
}

// Regions lists the regions the model was trained on.
func (m *Model) Regions() []string {
	return append([]string(nil), m.pre.categories...)
}

func (m *Model) evaluate(rows []Features, y []float64) Metrics {
	metrics := Metrics{TestRows: len(rows)}
	if len(rows) == 0 {
		return metrics
	}

	var absErr, ssRes, mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssTot float64
	for i, r := range rows {
		diff := y[i] - m.Predict(r)
		absErr += math.Abs(diff)
		ssRes += diff * diff
		ssTot += (y[i] - mean) * (y[i] - mean)
	}
	mae := absErr / float64(len(rows))
	metrics.MAE = &mae
	if len(rows) >= 2 && ssTot > 0 {
		r2 := 1 - ssRes/ssTot
		metrics.R2 = &r2
	}
	return metrics
}

// split shuffles n row indices and holds out ceil(n*testSize) of them.
// Training always keeps at least one row.
func split(n int, testSize float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return perm[nTest:], perm[:nTest]
}

func pick(rows []Features, idx []int) []Features {
	out := make([]Features, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func pickFloats(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// Cache keeps the model of the last dataset it was asked about.
type Cache struct {
	mu          sync.Mutex
	opts        Options
	fingerprint string
	model       *Model
}

func NewCache(opts Options) *Cache {
	return &Cache{opts: opts}
}

// Model returns the cached model for fingerprint, training one on listings
// when the fingerprint changed. Concurrent callers wait for one training run.
func (c *Cache) Model(fingerprint string, listings []models.JoinedListing) (*Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil && c.fingerprint == fingerprint {
		return c.model, nil
	}
	m, err := Train(listings, c.opts)
	if err != nil {
		return nil, fmt.Errorf("train for dataset %s: %w", fingerprint, err)
	}
	c.fingerprint, c.model = fingerprint, m
	return m, nil
}

// Reset drops the cached model.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.fingerprint, c.model = "", nil
	c.mu.Unlock()
}
