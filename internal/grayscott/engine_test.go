package grayscott

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

// scriptedRand replays vals (modulo n) and records every bound it was asked for.
type scriptedRand struct {
	vals   []int
	i      int
	bounds []int
}

func (r *scriptedRand) IntN(n int) int {
	r.bounds = append(r.bounds, n)
	v := 0
	if len(r.vals) > 0 {
		v = r.vals[r.i%len(r.vals)]
		r.i++
	}
	return v % n
}

func newBlank(t *testing.T, w, h, workers int) *Engine {
	t.Helper()
	e, err := New(Config{Width: w, Height: h, Seeds: NoSeeds, Workers: workers, Rand: NewRand(1)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustField(t *testing.T, e *Engine, c Chemical) *Field {
	t.Helper()
	f, err := e.Field(c)
	if err != nil {
		t.Fatalf("Field(%v): %v", c, err)
	}
	return f
}

// roll shifts f by (dx, dy) with wraparound.
func roll(f *Field, dx, dy int) *Field {
	out := f.Clone()
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			nx, ny := f.Wrap(x+dx, y+dy)
			out.Set(nx, ny, f.At(x, y))
		}
	}
	return out
}

func assertSameField(t *testing.T, name string, got, want *Field) {
	t.Helper()
	for i, v := range got.Values() {
		if v != want.Values()[i] {
			t.Fatalf("%s: cell %d = %.17g, want %.17g", name, i, v, want.Values()[i])
		}
	}
}

func TestNewInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero width", Config{Width: 0, Height: 10}},
		{"zero height", Config{Width: 10, Height: 0}},
		{"negative width", Config{Width: -3, Height: 10}},
		{"negative du", Config{Width: 4, Height: 4, Params: Params{Du: -0.1}}},
		{"nan dt", Config{Width: 4, Height: 4, Params: Params{Dt: math.NaN()}}},
		{"inf dv", Config{Width: 4, Height: 4, Params: Params{Dv: math.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	e := newBlank(t, 8, 6, 0)

	if got := e.Params(); got != DefaultParams() {
		t.Errorf("params = %+v, want %+v", got, DefaultParams())
	}
	if w, h := e.Size(); w != 8 || h != 6 {
		t.Errorf("size = %dx%d, want 8x6", w, h)
	}
	if e.Workers() < 1 {
		t.Errorf("workers = %d, want >= 1", e.Workers())
	}

	u, v := mustField(t, e, U), mustField(t, e, V)
	for i := range u.Values() {
		if u.Values()[i] != 1 || v.Values()[i] != 0 {
			t.Fatalf("cell %d: U=%g V=%g, want 1/0", i, u.Values()[i], v.Values()[i])
		}
	}
}

func TestNewClampsRates(t *testing.T) {
	e, err := New(Config{Width: 4, Height: 4, Seeds: NoSeeds, Params: Params{F: 3, K: -2}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := e.Params()
	if p.F != MaxRate || p.K != MinRate {
		t.Errorf("f=%g k=%g, want %g/%g", p.F, p.K, MaxRate, MinRate)
	}
}

func TestNewPlacesSeeds(t *testing.T) {
	rng := &scriptedRand{vals: []int{10, 20, 3}}
	e, err := New(Config{Width: 200, Height: 200, Seeds: 2, Rand: rng, Workers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []int{100, 100, 10, 100, 100, 10}
	if len(rng.bounds) != len(want) {
		t.Fatalf("rand calls = %v, want %v", rng.bounds, want)
	}
	for i, n := range want {
		if rng.bounds[i] != n {
			t.Errorf("rand bound %d = %d, want %d", i, rng.bounds[i], n)
		}
	}

	v := mustField(t, e, V)
	// centre (60, 70), radius 8
	if v.At(60, 70) != 1 || v.At(68, 70) != 1 || v.At(60, 62) != 1 {
		t.Error("expected disc of radius 8 around (60, 70)")
	}
	if v.At(69, 70) != 0 || v.At(66, 76) != 0 {
		t.Error("disc extends beyond radius 8")
	}
}

func TestSmallGridSeedsStayInside(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		e, err := New(Config{Width: 10, Height: 12, Rand: NewRand(seed), Workers: 1})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		e.ClearWithSeeds()
	}
}

func TestSetParametersClamps(t *testing.T) {
	e := newBlank(t, 4, 4, 1)

	tests := []struct {
		name         string
		f, k         float64
		wantF, wantK float64
	}{
		{"feed too high", 5.0, 0.05, 0.1, 0.05},
		{"kill too low", 0.05, -1.0, 0.05, 0.001},
		{"in range", 0.03, 0.06, 0.03, 0.06},
		{"both bounds", 0.1, 0.001, 0.1, 0.001},
		{"nan", math.NaN(), math.NaN(), 0.001, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.SetParameters(tt.f, tt.k)
			p := e.Params()
			if p.F != tt.wantF || p.K != tt.wantK {
				t.Errorf("f=%g k=%g, want %g/%g", p.F, p.K, tt.wantF, tt.wantK)
			}
		})
	}
}

func TestSetFeedLeavesKill(t *testing.T) {
	e := newBlank(t, 4, 4, 1)
	e.SetFeed(5.0)
	if p := e.Params(); p.F != 0.1 || p.K != DefaultKill {
		t.Errorf("f=%g k=%g, want 0.1/%g", p.F, p.K, DefaultKill)
	}
	e.SetKill(-1.0)
	if p := e.Params(); p.F != 0.1 || p.K != 0.001 {
		t.Errorf("f=%g k=%g, want 0.1/0.001", p.F, p.K)
	}
}

func TestSetParam(t *testing.T) {
	e := newBlank(t, 4, 4, 1)

	if err := e.SetParam("f", 0.02); err != nil {
		t.Fatalf("SetParam(f): %v", err)
	}
	if err := e.SetParam("k", 0.5); err != nil {
		t.Fatalf("SetParam(k): %v", err)
	}
	if got := e.GetParams(); got["f"] != 0.02 || got["k"] != 0.1 {
		t.Errorf("params = %v", got)
	}

	for _, name := range []string{"du", "dv", "dt"} {
		err := e.SetParam(name, 1)
		if !errors.Is(err, ErrImmutableParam) || !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetParam(%s) err = %v, want ErrImmutableParam", name, err)
		}
	}
	if err := e.SetParam("gravity", 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetParam(gravity) err = %v, want ErrInvalidArgument", err)
	}
	if e.Params().Du != DefaultDu {
		t.Error("du changed")
	}
}

func TestApplyPreset(t *testing.T) {
	e := newBlank(t, 4, 4, 1)
	e.SetParameters(0.09, 0.09)

	if !e.ApplyPreset(3) {
		t.Fatal("preset 3 not applied")
	}
	if p := e.Params(); p.F != 0.026 || p.K != 0.052 {
		t.Errorf("preset 3: f=%g k=%g, want 0.026/0.052", p.F, p.K)
	}

	if e.ApplyPreset(99) {
		t.Error("preset 99 reported as applied")
	}
	if p := e.Params(); p.F != 0.026 || p.K != 0.052 {
		t.Errorf("preset 99 changed params: f=%g k=%g", p.F, p.K)
	}
}

func TestPresetTable(t *testing.T) {
	ps := Presets()
	if len(ps) != 5 {
		t.Fatalf("len = %d, want 5", len(ps))
	}
	for i, p := range ps {
		if p.ID != i+1 {
			t.Errorf("preset %d has id %d", i, p.ID)
		}
		if p.F < MinRate || p.F > MaxRate || p.K < MinRate || p.K > MaxRate {
			t.Errorf("preset %d out of range: %+v", p.ID, p)
		}
	}

	ps[0].F = 1
	if p, _ := LookupPreset(1); p.F != 0.055 {
		t.Error("Presets returned shared storage")
	}
	if _, ok := LookupPreset(0); ok {
		t.Error("preset 0 should not exist")
	}
}

func TestAddChemicalDisc(t *testing.T) {
	e := newBlank(t, 10, 10, 1)
	if err := e.AddChemical(5, 5, 2, V, 1.0); err != nil {
		t.Fatalf("AddChemical: %v", err)
	}

	v := mustField(t, e, V)
	count := 0
	for _, val := range v.Values() {
		if val == 1 {
			count++
		}
	}
	if count != 13 {
		t.Errorf("disc covers %d cells, want 13", count)
	}
	if v.At(7, 5) != 1 || v.At(6, 6) != 1 || v.At(7, 6) != 0 {
		t.Error("disc shape mismatch")
	}
	if u := mustField(t, e, U); u.At(5, 5) != 1 {
		t.Error("U changed by V seeding")
	}
}

func TestAddChemicalClipsAtEdges(t *testing.T) {
	e := newBlank(t, 10, 10, 1)
	if err := e.AddChemical(0, 0, 2, V, 1.0); err != nil {
		t.Fatalf("AddChemical: %v", err)
	}

	v := mustField(t, e, V)
	want := map[[2]int]bool{{0, 0}: true, {1, 0}: true, {2, 0}: true, {0, 1}: true, {0, 2}: true, {1, 1}: true}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if got := v.At(x, y) == 1; got != want[[2]int{x, y}] {
				t.Errorf("cell (%d,%d) set=%v, want %v", x, y, got, want[[2]int{x, y}])
			}
		}
	}
}

func TestAddChemicalOutOfRange(t *testing.T) {
	e := newBlank(t, 10, 10, 1)

	tests := []struct {
		name    string
		x, y, r int
		want    int
	}{
		{"far outside", 100, 100, 3, 0},
		{"negative centre reaching in", -2, 5, 3, 6},
		{"negative radius", 4, 4, -6, 1},
		{"huge radius", 5, 5, 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.V().Fill(0)
			if err := e.AddChemical(tt.x, tt.y, tt.r, V, 1); err != nil {
				t.Fatalf("AddChemical: %v", err)
			}
			count := 0
			for _, val := range e.V().Values() {
				if val == 1 {
					count++
				}
			}
			if count != tt.want {
				t.Errorf("set %d cells, want %d", count, tt.want)
			}
		})
	}
}

func TestAddChemicalClampsValue(t *testing.T) {
	e := newBlank(t, 6, 6, 1)
	_ = e.AddChemical(2, 2, 1, U, 7.5)
	_ = e.AddChemical(2, 2, 0, V, -3)

	if got := mustField(t, e, U).At(2, 2); got != 1 {
		t.Errorf("U = %g, want 1", got)
	}
	if got := mustField(t, e, V).At(2, 2); got != 0 {
		t.Errorf("V = %g, want 0", got)
	}
	_ = e.AddChemical(3, 3, 1, U, 0.25)
	if got := mustField(t, e, U).At(3, 3); got != 0.25 {
		t.Errorf("U = %g, want 0.25", got)
	}
}

func TestInvalidSelector(t *testing.T) {
	e := newBlank(t, 4, 4, 1)

	if err := e.AddChemical(1, 1, 1, Chemical(0), 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddChemical err = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.Field(Chemical(7)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Field err = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.Snapshot(Chemical(-1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Snapshot err = %v, want ErrInvalidArgument", err)
	}
}

func TestParseChemical(t *testing.T) {
	tests := []struct {
		in   string
		want Chemical
		ok   bool
	}{
		{"u", U, true},
		{"V", V, true},
		{" v ", V, true},
		{"w", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseChemical(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseChemical(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestStepKeepsFieldsInRange(t *testing.T) {
	for _, p := range Presets() {
		e, err := New(Config{Width: 48, Height: 40, Rand: NewRand(int64(p.ID)), Workers: 2})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		e.ApplyPreset(p.ID)
		_ = e.AddChemical(3, 3, 6, V, 1)
		_ = e.AddChemical(40, 30, 4, U, 0)

		for i := 0; i < 200; i++ {
			e.Step()
			for _, c := range []Chemical{U, V} {
				for j, val := range mustField(t, e, c).Values() {
					if val < 0 || val > 1 || math.IsNaN(val) {
						t.Fatalf("preset %d step %d: %v[%d] = %g", p.ID, i, c, j, val)
					}
				}
			}
		}
	}
}

func TestStepUnstableStillClamped(t *testing.T) {
	e, err := New(Config{Width: 20, Height: 20, Seeds: 3, Rand: NewRand(3), Params: Params{Du: 5, Dv: 5, Dt: 4}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.StepN(30)
	for _, c := range []Chemical{U, V} {
		for _, val := range mustField(t, e, c).Values() {
			if val < 0 || val > 1 {
				t.Fatalf("%v escaped [0,1]: %g", c, val)
			}
		}
	}
}

func TestStepEquilibrium(t *testing.T) {
	e := newBlank(t, 12, 9, 1)
	e.StepN(100)

	u, v := mustField(t, e, U), mustField(t, e, V)
	for i := range u.Values() {
		if u.Values()[i] != 1 || v.Values()[i] != 0 {
			t.Fatalf("cell %d drifted: U=%g V=%g", i, u.Values()[i], v.Values()[i])
		}
	}
	if e.Steps() != 100 {
		t.Errorf("steps = %d, want 100", e.Steps())
	}
}

func TestStepSingleDisc(t *testing.T) {
	e := newBlank(t, 10, 10, 1)
	if err := e.AddChemical(5, 5, 2, V, 1.0); err != nil {
		t.Fatalf("AddChemical: %v", err)
	}

	e.Step()

	u, v := mustField(t, e, U), mustField(t, e, V)
	if got := v.At(5, 5); got != 1.0 {
		t.Errorf("centre V = %g, want clamp at 1", got)
	}
	if got := u.At(5, 5); got != 0 {
		t.Errorf("centre U = %g, want 0", got)
	}
	if got := v.At(0, 0); got != 0 {
		t.Errorf("corner V = %g, want 0", got)
	}
	if got := u.At(0, 0); math.Abs(got-1) > 1e-15 {
		t.Errorf("corner U = %g, want 1", got)
	}
}

func TestStepMatchesReferenceFormula(t *testing.T) {
	e := newBlank(t, 9, 7, 1)
	_ = e.AddChemical(4, 3, 2, V, 0.6)
	_ = e.AddChemical(2, 2, 1, U, 0.4)

	u0, _ := e.Snapshot(U)
	v0, _ := e.Snapshot(V)
	lapU, lapV := Laplacian(u0), Laplacian(v0)
	p := e.Params()

	e.Step()

	u1, v1 := mustField(t, e, U), mustField(t, e, V)
	for i := range u0.Values() {
		uu, vv := u0.Values()[i], v0.Values()[i]
		r := uu * vv * vv
		wantU := clamp01(uu + p.Dt*(p.Du*lapU.Values()[i]-r+p.F*(1-uu)))
		wantV := clamp01(vv + p.Dt*(p.Dv*lapV.Values()[i]+r-(p.F+p.K)*vv))
		if math.Abs(u1.Values()[i]-wantU) > 1e-15 || math.Abs(v1.Values()[i]-wantV) > 1e-15 {
			t.Fatalf("cell %d: got U=%g V=%g, want U=%g V=%g", i, u1.Values()[i], v1.Values()[i], wantU, wantV)
		}
	}
}

func TestStepDeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) (*Field, *Field) {
		e, err := New(Config{Width: 96, Height: 80, Rand: NewRand(42), Workers: workers})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		e.ApplyPreset(2)
		e.StepN(150)
		u, _ := e.Snapshot(U)
		v, _ := e.Snapshot(V)
		return u, v
	}

	u1, v1 := run(1)
	for _, workers := range []int{2, 3, 8} {
		u, v := run(workers)
		assertSameField(t, "U", u, u1)
		assertSameField(t, "V", v, v1)
	}
}

func TestStepCommutesWithToroidalShift(t *testing.T) {
	build := func() *Engine {
		e := newBlank(t, 32, 24, 1)
		_ = e.AddChemical(1, 2, 4, V, 1)
		_ = e.AddChemical(30, 20, 3, V, 0.8)
		return e
	}

	a := build()
	a.StepN(20)
	ua, _ := a.Snapshot(U)
	va, _ := a.Snapshot(V)
	wantU, wantV := roll(ua, 1, 1), roll(va, 1, 1)

	b := build()
	_ = b.U().CopyFrom(roll(b.U(), 1, 1))
	_ = b.V().CopyFrom(roll(b.V(), 1, 1))
	b.StepN(20)

	assertSameField(t, "U", b.U(), wantU)
	assertSameField(t, "V", b.V(), wantV)
}

func TestResetRestoresFieldsKeepsParams(t *testing.T) {
	e, err := New(Config{Width: 30, Height: 30, Rand: NewRand(9), Workers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.SetParameters(0.02, 0.05)
	e.StepN(10)

	e.Reset()

	if e.Steps() != 0 {
		t.Errorf("steps = %d, want 0", e.Steps())
	}
	if p := e.Params(); p.F != 0.02 || p.K != 0.05 || p.Du != DefaultDu {
		t.Errorf("params changed: %+v", p)
	}
	for _, val := range e.U().Values() {
		if val != 1 {
			t.Fatalf("U = %g after reset, want 1", val)
		}
	}
	seeded := 0
	for _, val := range e.V().Values() {
		if val != 0 && val != 1 {
			t.Fatalf("V = %g after reset, want 0 or 1", val)
		}
		if val == 1 {
			seeded++
		}
	}
	if seeded == 0 {
		t.Error("reset placed no seeds")
	}
}

func TestResetUsesFiveSeeds(t *testing.T) {
	rng := &scriptedRand{}
	e, err := New(Config{Width: 20, Height: 20, Seeds: NoSeeds, Rand: rng, Workers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Reset()
	if len(rng.bounds) != 3*DefaultSeeds {
		t.Errorf("rand calls = %d, want %d", len(rng.bounds), 3*DefaultSeeds)
	}
}

func TestClearWithSeedsCount(t *testing.T) {
	for draw := 0; draw < 5; draw++ {
		rng := &scriptedRand{vals: []int{draw}}
		e, err := New(Config{Width: 20, Height: 20, Seeds: NoSeeds, Rand: rng, Workers: 1})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		e.ClearWithSeeds()

		if rng.bounds[0] != 5 {
			t.Fatalf("seed count drawn from [0,%d), want [0,5)", rng.bounds[0])
		}
		discs := (len(rng.bounds) - 1) / 3
		if discs != 3+draw {
			t.Errorf("draw %d: placed %d discs, want %d", draw, discs, 3+draw)
		}
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	e := newBlank(t, 8, 8, 1)
	snap, err := e.Snapshot(V)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	_ = e.AddChemical(4, 4, 2, V, 1)
	if snap.At(4, 4) != 0 {
		t.Error("snapshot aliases the live field")
	}
}

func BenchmarkStep(b *testing.B) {
	for _, workers := range []int{1, 4} {
		e, _ := New(Config{Width: 256, Height: 256, Rand: NewRand(1), Workers: workers})
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				e.Step()
			}
		})
	}
}
