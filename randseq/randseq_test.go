package randseq_test

import (
	"math"
	"testing"

	"github.com/meenmo/optlib/randseq"
)

func TestNormals_SeedDeterminism(t *testing.T) {
	t.Parallel()

	a := randseq.Normals(1000, 42)
	b := randseq.Normals(1000, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %g vs %g", i, a[i], b[i])
		}
	}

	c := randseq.Normals(1000, 43)
	same := 0
	for i := range a {
		if a[i] == c[i] {
			same++
		}
	}
	if same == len(a) {
		t.Error("different seeds produced identical sequences")
	}
}

func TestAntitheticNormals_Pairing(t *testing.T) {
	t.Parallel()

	samples := randseq.AntitheticNormals(1000, 42)
	for i := 0; i < len(samples); i += 2 {
		if samples[i] != -samples[i+1] {
			t.Fatalf("pair %d not antithetic: %g, %g", i/2, samples[i], samples[i+1])
		}
	}

	// Paired samples cancel exactly in the mean.
	sum := 0.0
	for _, z := range samples {
		sum += z
	}
	if math.Abs(sum) > 1e-10 {
		t.Errorf("antithetic sum = %g, want 0", sum)
	}

	if got := randseq.AntitheticNormals(7, 42); len(got) != 7 {
		t.Errorf("odd length: got %d samples, want 7", len(got))
	}
}

func TestStratifiedNormals_Coverage(t *testing.T) {
	t.Parallel()

	const n = 10000
	samples := randseq.StratifiedNormals(n, 42)

	// One draw per stratum means the mapped normals are strictly ordered.
	for i := 1; i < n; i++ {
		if samples[i] <= samples[i-1] {
			t.Fatalf("samples not increasing at %d: %g then %g", i, samples[i-1], samples[i])
		}
	}

	// Full coverage pins the sample mean tightly to zero.
	sum := 0.0
	for _, z := range samples {
		sum += z
	}
	if mean := sum / n; math.Abs(mean) > 0.01 {
		t.Errorf("stratified mean = %g, want ~0", mean)
	}
}

func TestQuasiRandomNormals(t *testing.T) {
	t.Parallel()

	a := randseq.QuasiRandomNormals(64)
	b := randseq.QuasiRandomNormals(64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("van der Corput sequence is not deterministic")
		}
	}

	// First element: vdc(1, 2) = 0.5 maps to the median.
	if math.Abs(a[0]) > 1e-12 {
		t.Errorf("first sample = %g, want 0", a[0])
	}
	for i, z := range a {
		if math.IsInf(z, 0) || math.IsNaN(z) {
			t.Fatalf("sample %d = %v", i, z)
		}
	}
}

func TestGenerate_Dispatch(t *testing.T) {
	t.Parallel()

	for _, policy := range []randseq.Policy{randseq.Plain, randseq.Antithetic, randseq.Stratified, randseq.QuasiRandom} {
		got := randseq.Generate(policy, 100, 42)
		if len(got) != 100 {
			t.Errorf("%s: got %d samples, want 100", policy, len(got))
		}
	}
}
