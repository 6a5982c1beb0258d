package postprocess

import (
	"sort"

	"github.com/pkg/errors"
)

// Config defines the post-processing parameters.
type Config struct {
	// ScoreThreshold drops candidates whose objectness times best class
	// probability does not exceed it.
	ScoreThreshold float32 `json:"scoreThreshold" yaml:"scoreThreshold"`
	// BetaNMS is the suppression strength. The effective DIoU threshold for
	// suppressing a candidate against a kept box is
	// BetaNMS * kept.Score / (kept.Score + candidate.Score), so near-equal
	// duplicates are suppressed more aggressively than weak stragglers.
	BetaNMS float32 `json:"betaNMS" yaml:"betaNMS"`
}

// DefaultConfig returns the documented defaults: score threshold 0.25,
// beta 0.6.
func DefaultConfig() *Config {
	return &Config{
		ScoreThreshold: 0.25,
		BetaNMS:        0.6,
	}
}

// scored pairs a surviving detection with its ranking score.
type scored struct {
	det   Detection
	score float32
}

// DIoUNMS filters aggregated candidates by score and suppresses duplicate
// boxes per class using Distance-IoU.
//
// candidates is a flat (N, 5+numClasses) buffer of decoded boxes in
// network-input pixel space: x, y, w, h, objectness, class probabilities.
//
// Suppression is class-scoped: candidates are grouped by their best class,
// and fully-overlapping boxes of different classes both survive. Within each
// group the highest-scoring remaining candidate is kept and every remaining
// candidate whose DIoU against it exceeds the effective threshold is
// dropped. Kept detections are emitted in descending score order per group,
// groups in ascending class-id order; there is no global sort.
//
// An empty result is valid and common, not an error.
func DIoUNMS(candidates []float32, numClasses int, cfg *Config) ([]Detection, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if numClasses < 1 {
		return nil, errors.Errorf("invalid class count %d", numClasses)
	}
	stride := 5 + numClasses
	if len(candidates)%stride != 0 {
		return nil, errors.Errorf("candidate buffer length %d is not a multiple of row size %d",
			len(candidates), stride)
	}

	// Score filter, and per-candidate top-2 class selection.
	groups := map[int][]scored{}
	for base := 0; base < len(candidates); base += stride {
		row := candidates[base : base+stride]
		obj := row[4]

		best, second := topTwoClasses(row[5:])
		score := obj * best.Prob
		if score <= cfg.ScoreThreshold {
			continue
		}

		groups[best.ID] = append(groups[best.ID], scored{
			det: Detection{
				X:          row[0],
				Y:          row[1],
				W:          row[2],
				H:          row[3],
				Objectness: obj,
				Classes:    [2]ClassScore{best, second},
			},
			score: score,
		})
	}

	classIDs := make([]int, 0, len(groups))
	for id := range groups {
		classIDs = append(classIDs, id)
	}
	sort.Ints(classIDs)

	var kept []Detection
	for _, id := range classIDs {
		kept = append(kept, suppressGroup(groups[id], cfg.BetaNMS)...)
	}
	return kept, nil
}

// suppressGroup runs greedy DIoU suppression over one class group.
func suppressGroup(group []scored, beta float32) []Detection {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].score > group[j].score
	})

	kept := make([]Detection, 0, len(group))
	used := make([]bool, len(group))

	for i := range group {
		if used[i] {
			continue
		}
		anchor := group[i]
		kept = append(kept, anchor.det)
		used[i] = true

		for j := i + 1; j < len(group); j++ {
			if used[j] {
				continue
			}
			threshold := beta * anchor.score / (anchor.score + group[j].score)
			if DIoU(&anchor.det, &group[j].det) > threshold {
				used[j] = true
			}
		}
	}
	return kept
}

// topTwoClasses returns the two highest class probabilities. With a single
// class the second slot is {-1, 0}.
func topTwoClasses(probs []float32) (best, second ClassScore) {
	best = ClassScore{ID: 0, Prob: probs[0]}
	second = ClassScore{ID: -1, Prob: 0}
	for c := 1; c < len(probs); c++ {
		switch {
		case probs[c] > best.Prob:
			second = best
			best = ClassScore{ID: c, Prob: probs[c]}
		case second.ID == -1 || probs[c] > second.Prob:
			second = ClassScore{ID: c, Prob: probs[c]}
		}
	}
	return best, second
}

// DIoU is the Distance-IoU between two center-format boxes: IoU penalized by
// the squared center distance over the squared diagonal of the smallest
// enclosing box. Values range over (-1, 1]; 1 means identical boxes.
func DIoU(a, b *Detection) float32 {
	ax1, ay1, ax2, ay2 := a.X-a.W/2, a.Y-a.H/2, a.X+a.W/2, a.Y+a.H/2
	bx1, by1, bx2, by2 := b.X-b.W/2, b.Y-b.H/2, b.X+b.W/2, b.Y+b.H/2

	iou := cornerIoU(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2)

	// Smallest enclosing box diagonal.
	cx1 := min(ax1, bx1)
	cy1 := min(ay1, by1)
	cx2 := max(ax2, bx2)
	cy2 := max(ay2, by2)
	diag := (cx2-cx1)*(cx2-cx1) + (cy2-cy1)*(cy2-cy1)
	if diag == 0 {
		return iou
	}

	dist := (a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y)
	return iou - dist/diag
}

func cornerIoU(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 float32) float32 {
	ix1 := max(ax1, bx1)
	iy1 := max(ay1, by1)
	ix2 := min(ax2, bx2)
	iy2 := min(ay2, by2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	inter := interW * interH

	areaA := (ax2 - ax1) * (ay2 - ay1)
	areaB := (bx2 - bx1) * (by2 - by1)
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
