package timing_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beatsim/internal/timing"
)

var _ = Describe("Window", func() {
	Describe("Opacity", func() {
		w := timing.Window{Start: 2, End: 10, FadeIn: 1, FadeOut: 2}

		DescribeTable("ramps",
			func(t float64, want int) {
				Expect(w.Opacity(200, t)).To(Equal(want))
			},
			Entry("before start", 1.0, 0),
			Entry("at start", 2.0, 0),
			Entry("half way in", 2.5, 100),
			Entry("after fade in", 3.0, 200),
			Entry("middle", 6.0, 200),
			Entry("half way out", 9.0, 100),
			Entry("at end", 10.0, 0),
			Entry("after end", 11.0, 0),
		)

		It("is non-decreasing during fade in", func() {
			prev := -1
			for t := 2.0; t <= 3.0; t += 0.01 {
				o := w.Opacity(255, t)
				Expect(o).To(BeNumerically(">=", prev))
				prev = o
			}
		})

		It("is non-increasing during fade out", func() {
			prev := 256
			for t := 8.0; t <= 10.0; t += 0.01 {
				o := w.Opacity(255, t)
				Expect(o).To(BeNumerically("<=", prev))
				prev = o
			}
		})

		It("equals the base alpha between the ramps", func() {
			for t := 3.01; t < 8.0; t += 0.1 {
				Expect(w.Opacity(180, t)).To(Equal(180))
			}
		})

		It("jumps straight to full alpha without a fade in", func() {
			instant := timing.Window{Start: 1, End: math.Inf(1)}
			Expect(instant.Opacity(255, 1)).To(Equal(255))
		})

		It("never fades out an unbounded window", func() {
			open := timing.Window{End: math.Inf(1), FadeOut: 5}
			Expect(open.Opacity(255, 1e9)).To(Equal(255))
		})

		It("clamps the result into a byte", func() {
			Expect(timing.Always().Opacity(400, 0)).To(Equal(255))
			Expect(timing.Always().Opacity(-4, 0)).To(Equal(0))
		})
	})

	Describe("Contains", func() {
		It("includes both bounds", func() {
			w := timing.Window{Start: 1, End: 2}
			Expect(w.Contains(1)).To(BeTrue())
			Expect(w.Contains(2)).To(BeTrue())
			Expect(w.Contains(0.99)).To(BeFalse())
			Expect(w.Contains(2.01)).To(BeFalse())
		})
	})

	Describe("Validate", func() {
		It("accepts the default window", func() {
			Expect(timing.Always().Validate()).To(Succeed())
		})

		It("rejects negative fades", func() {
			w := timing.Window{End: 5, FadeIn: -1}
			Expect(w.Validate()).To(MatchError(timing.ErrNegativeFade))
		})

		It("rejects inverted windows", func() {
			w := timing.Window{Start: 5, End: 1}
			Expect(w.Validate()).To(MatchError(timing.ErrInverted))
		})

		It("rejects NaN", func() {
			w := timing.Window{Start: math.NaN(), End: 1}
			Expect(w.Validate()).To(MatchError(timing.ErrNotANumber))
		})
	})
})
