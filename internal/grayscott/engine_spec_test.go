package grayscott_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rdsim/internal/grayscott"
)

var _ = Describe("Engine", func() {
	var eng *grayscott.Engine

	BeforeEach(func() {
		var err error
		eng, err = grayscott.New(grayscott.Config{
			Width:   64,
			Height:  48,
			Rand:    grayscott.NewRand(7),
			Workers: 2,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("starts with U saturated and seeded V discs", func() {
			u, err := eng.Field(grayscott.U)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Values()).To(HaveEach(1.0))

			v, err := eng.Field(grayscott.V)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Values()).To(ContainElement(1.0))
			Expect(v.Values()).To(HaveEach(Or(Equal(0.0), Equal(1.0))))
		})

		It("rejects an empty grid", func() {
			_, err := grayscott.New(grayscott.Config{Width: 0, Height: 10})
			Expect(err).To(MatchError(grayscott.ErrInvalidConfiguration))
		})
	})

	Describe("stepping", func() {
		It("keeps both fields inside [0, 1]", func() {
			for _, p := range grayscott.Presets() {
				eng.ApplyPreset(p.ID)
				eng.StepN(25)
				for _, c := range []grayscott.Chemical{grayscott.U, grayscott.V} {
					f, _ := eng.Field(c)
					Expect(f.Values()).To(HaveEach(And(
						BeNumerically(">=", 0.0),
						BeNumerically("<=", 1.0),
					)), "preset %d, %v", p.ID, c)
				}
			}
		})

		It("counts steps and simulated time", func() {
			eng.StepN(12)
			Expect(eng.Steps()).To(Equal(12))
			Expect(eng.Time()).To(BeNumerically("~", 12.0, 1e-12))
		})

		It("produces the same fields regardless of worker count", func() {
			serial, err := grayscott.New(grayscott.Config{
				Width: 64, Height: 48, Rand: grayscott.NewRand(7), Workers: 1,
			})
			Expect(err).NotTo(HaveOccurred())

			eng.StepN(40)
			serial.StepN(40)

			Expect(eng.V().Values()).To(Equal(serial.V().Values()))
			Expect(eng.U().Values()).To(Equal(serial.U().Values()))
		})
	})

	Describe("parameters", func() {
		DescribeTable("clamping of feed and kill",
			func(f, k, wantF, wantK float64) {
				eng.SetParameters(f, k)
				Expect(eng.Params().F).To(Equal(wantF))
				Expect(eng.Params().K).To(Equal(wantK))
			},
			Entry("feed above range", 5.0, 0.05, 0.1, 0.05),
			Entry("kill below range", 0.05, -1.0, 0.05, 0.001),
			Entry("untouched", 0.04, 0.06, 0.04, 0.06),
		)

		DescribeTable("presets",
			func(id int, wantF, wantK float64) {
				Expect(eng.ApplyPreset(id)).To(BeTrue())
				Expect(eng.Params().F).To(Equal(wantF))
				Expect(eng.Params().K).To(Equal(wantK))
			},
			Entry("mitosis", 1, 0.055, 0.062),
			Entry("coral", 2, 0.039, 0.058),
			Entry("stripes", 3, 0.026, 0.052),
			Entry("waves", 4, 0.078, 0.061),
			Entry("spirals", 5, 0.014, 0.047),
		)

		It("ignores unknown presets", func() {
			before := eng.Params()
			Expect(eng.ApplyPreset(99)).To(BeFalse())
			Expect(eng.Params()).To(Equal(before))
		})
	})

	Describe("reseeding", func() {
		It("keeps parameters across Reset", func() {
			eng.ApplyPreset(5)
			eng.StepN(5)
			eng.Reset()

			Expect(eng.Steps()).To(BeZero())
			Expect(eng.Params().F).To(Equal(0.014))
			Expect(eng.U().Values()).To(HaveEach(1.0))
		})

		It("seeds at least one disc on ClearWithSeeds", func() {
			eng.ClearWithSeeds()
			Expect(eng.V().Values()).To(ContainElement(1.0))
		})
	})

	Describe("AddChemical", func() {
		It("rejects unknown chemicals", func() {
			err := eng.AddChemical(3, 3, 2, grayscott.Chemical(9), 1)
			Expect(err).To(MatchError(grayscott.ErrInvalidArgument))
		})

		It("clips discs at the grid edge", func() {
			eng.V().Fill(0)
			Expect(eng.AddChemical(63, 47, 1, grayscott.V, 1)).To(Succeed())

			v := eng.V()
			Expect(v.At(63, 47)).To(Equal(1.0))
			Expect(v.At(62, 47)).To(Equal(1.0))
			Expect(v.At(0, 47)).To(Equal(0.0))
			Expect(v.At(63, 0)).To(Equal(0.0))
		})
	})
})
