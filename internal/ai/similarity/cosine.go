package similarity

import (
	"math"
	"net/http"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("VECTOR")

var CodeShapeMismatch = ErrRegistry.Register("SHAPE_MISMATCH", errx.TypeInternal, http.StatusInternalServerError, "Vectors have different dimensions")

func ErrShapeMismatch(a, b int) *errx.Error {
	return ErrRegistry.New(CodeShapeMismatch).
		WithDetail("left_dim", a).
		WithDetail("right_dim", b)
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// A zero-norm vector on either side yields 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrShapeMismatch(len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Rounding can push parallel vectors slightly past 1
	switch {
	case score > 1:
		return 1, nil
	case score < -1:
		return -1, nil
	}
	return score, nil
}
