// Package metrics implements classification metrics computed over whole
// evaluation splits. Class-based metrics consume hard predictions;
// ranking-based metrics consume per-example scores for the positive class.
package metrics

import (
	"fmt"
	"sort"
)

// Metric scores a full split. Predictions are hard class labels and scores
// are the positive-class score per example; a metric uses whichever input
// it needs.
type Metric interface {
	Tag() string
	Compute(predictions []int, scores []float64, labels []int) float64
}

// Registry maps metric tags to constructed metrics.
type Registry struct {
	metrics map[string]Metric
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register stores a metric under its tag.
func (r *Registry) Register(m Metric) {
	r.metrics[m.Tag()] = m
}

// Get returns the metric registered under the given tag.
func (r *Registry) Get(tag string) (Metric, error) {
	m, ok := r.metrics[tag]
	if !ok {
		return nil, fmt.Errorf("no metric registered under tag %q", tag)
	}
	return m, nil
}

// counts tallies the binary confusion matrix for one positive class.
func counts(predictions, labels []int, positive int) (tp, fp, fn float64) {
	for i, p := range predictions {
		switch {
		case p == positive && labels[i] == positive:
			tp++
		case p == positive:
			fp++
		case labels[i] == positive:
			fn++
		}
	}
	return tp, fp, fn
}

// Precision is binary precision for the given positive class.
type Precision struct {
	tag      string
	Positive int
}

func NewPrecision(tag string, positive int) *Precision {
	return &Precision{tag: tag, Positive: positive}
}

func (m *Precision) Tag() string { return m.tag }

func (m *Precision) Compute(predictions []int, _ []float64, labels []int) float64 {
	tp, fp, _ := counts(predictions, labels, m.Positive)
	if tp+fp == 0 {
		return 0
	}
	return tp / (tp + fp)
}

// Recall is binary recall for the given positive class.
type Recall struct {
	tag      string
	Positive int
}

func NewRecall(tag string, positive int) *Recall {
	return &Recall{tag: tag, Positive: positive}
}

func (m *Recall) Tag() string { return m.tag }

func (m *Recall) Compute(predictions []int, _ []float64, labels []int) float64 {
	tp, _, fn := counts(predictions, labels, m.Positive)
	if tp+fn == 0 {
		return 0
	}
	return tp / (tp + fn)
}

// F1 is the harmonic mean of precision and recall for the given positive
// class.
type F1 struct {
	tag      string
	Positive int
}

func NewF1(tag string, positive int) *F1 {
	return &F1{tag: tag, Positive: positive}
}

func (m *F1) Tag() string { return m.tag }

func (m *F1) Compute(predictions []int, _ []float64, labels []int) float64 {
	tp, fp, fn := counts(predictions, labels, m.Positive)
	if 2*tp+fp+fn == 0 {
		return 0
	}
	return 2 * tp / (2*tp + fp + fn)
}

// Accuracy is the fraction of predictions matching their labels.
type Accuracy struct {
	tag string
}

func NewAccuracy(tag string) *Accuracy { return &Accuracy{tag: tag} }

func (m *Accuracy) Tag() string { return m.tag }

func (m *Accuracy) Compute(predictions []int, _ []float64, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	var correct float64
	for i, p := range predictions {
		if p == labels[i] {
			correct++
		}
	}
	return correct / float64(len(labels))
}

// AUROC is the area under the ROC curve for the given positive class,
// computed from positive-class scores via the rank statistic (equal to the
// Mann-Whitney U normalization). Ties receive the midrank.
type AUROC struct {
	tag      string
	Positive int
}

func NewAUROC(tag string, positive int) *AUROC {
	return &AUROC{tag: tag, Positive: positive}
}

func (m *AUROC) Tag() string { return m.tag }

func (m *AUROC) Compute(_ []int, scores []float64, labels []int) float64 {
	ranks := midranks(scores)
	var pos, neg, rankSum float64
	for i, l := range labels {
		if l == m.Positive {
			pos++
			rankSum += ranks[i]
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}

// AUPR is the area under the precision-recall curve for the given positive
// class, computed by sweeping thresholds over the sorted scores and
// integrating precision over recall (step interpolation).
type AUPR struct {
	tag      string
	Positive int
}

func NewAUPR(tag string, positive int) *AUPR {
	return &AUPR{tag: tag, Positive: positive}
}

func (m *AUPR) Tag() string { return m.tag }

func (m *AUPR) Compute(_ []int, scores []float64, labels []int) float64 {
	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, len(scores))
	var totalPos float64
	for i, s := range scores {
		p := labels[i] == m.Positive
		pairs[i] = pair{score: s, pos: p}
		if p {
			totalPos++
		}
	}
	if totalPos == 0 {
		return 0
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	var tp, fp, area, prevRecall float64
	for i := 0; i < len(pairs); {
		// Advance over all examples sharing this score so ties share a
		// threshold.
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			if pairs[j].pos {
				tp++
			} else {
				fp++
			}
			j++
		}
		precision := tp / (tp + fp)
		recall := tp / totalPos
		area += precision * (recall - prevRecall)
		prevRecall = recall
		i = j
	}
	return area
}

// midranks assigns 1-based ranks to scores, averaging ranks over ties.
func midranks(scores []float64) []float64 {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	ranks := make([]float64, len(scores))
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && scores[idx[j]] == scores[idx[i]] {
			j++
		}
		mid := float64(i+j+1) / 2 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid
		}
		i = j
	}
	return ranks
}
