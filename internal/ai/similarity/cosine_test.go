package similarity

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
)

const eps = 1e-6

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, -1}, []float32{-1, 1}, -1},
		{"zero left", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"zero both", []float32{0, 0}, []float32{0, 0}, 0},
		{"empty", []float32{}, []float32{}, 0},
		{"45 degrees", []float32{1, 0}, []float32{1, 1}, 1 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > eps {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityShapeMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2})
	if !errx.IsCode(err, CodeShapeMismatch) {
		t.Fatalf("error = %v, want %s", err, CodeShapeMismatch)
	}
}

func TestCosineSimilarityProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randVec := func(n int) []float32 {
		v := make([]float32, n)
		for i := range v {
			v[i] = rng.Float32()*2 - 1
		}
		return v
	}

	for i := 0; i < 200; i++ {
		dim := 1 + rng.Intn(64)
		a, b := randVec(dim), randVec(dim)

		ab, err := CosineSimilarity(a, b)
		if err != nil {
			t.Fatal(err)
		}
		ba, err := CosineSimilarity(b, a)
		if err != nil {
			t.Fatal(err)
		}
		if ab != ba {
			t.Fatalf("not symmetric: %v vs %v", ab, ba)
		}
		if ab < -1 || ab > 1 {
			t.Fatalf("out of range: %v", ab)
		}

		if norm(a) > 0 {
			self, _ := CosineSimilarity(a, a)
			if math.Abs(self-1) > eps {
				t.Fatalf("self similarity = %v, want 1", self)
			}
		}
	}
}

func TestCosineSimilarityConcurrent(t *testing.T) {
	a := []float32{0.3, 0.1, 0.9}
	b := []float32{0.2, 0.8, 0.4}
	want, _ := CosineSimilarity(a, b)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got, _ := CosineSimilarity(a, b); got != want {
					t.Errorf("concurrent result %v != %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
