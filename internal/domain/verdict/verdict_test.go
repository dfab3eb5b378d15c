package verdict_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/internal/domain/verdict"
	. "github.com/smartystreets/goconvey/convey"
)

func eval(fa, co, re, ch float64) model.Evaluation {
	return model.Evaluation{
		Scores: model.DimensionScores{
			FactualAccuracy: fa,
			Completeness:    co,
			Relevance:       re,
			Coherence:       ch,
		},
		EvaluatedAt: time.Now(),
	}
}

func TestComputer_Compute(t *testing.T) {
	Convey("Given a computer with default thresholds", t, func() {
		c := verdict.NewComputer()

		Convey("When three of four questions are scored", func() {
			evals := []model.Evaluation{
				eval(0.9, 0.8, 0.9, 0.8),
				eval(0.7, 0.6, 0.8, 0.7),
				eval(0.8, 0.7, 0.7, 0.8),
			}

			sum, ok, err := c.Compute(evals, 4)

			Convey("Then averages cover only the scored answers", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(sum.EvaluatedCount, ShouldEqual, 3)
				So(sum.TotalQuestions, ShouldEqual, 4)
				So(sum.AverageFactualAccuracy, ShouldAlmostEqual, 0.8, 1e-9)
				So(sum.AverageCompleteness, ShouldAlmostEqual, 0.7, 1e-9)
				So(sum.AverageRelevance, ShouldAlmostEqual, 0.8, 1e-9)
				So(sum.AverageCoherence, ShouldAlmostEqual, 0.766666666, 1e-6)
				So(sum.AverageScore, ShouldAlmostEqual, 0.766666666, 1e-6)
			})

			Convey("And the verdict follows the average", func() {
				So(sum.PassStatus, ShouldEqual, model.PassStatusPass)
				So(sum.KnowledgeLevel, ShouldEqual, model.KnowledgeAdvanced)
			})
		})

		Convey("When no evaluation is fully scored", func() {
			sum, ok, err := c.Compute(nil, 4)

			Convey("Then it reports nothing to aggregate without an error", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(sum, ShouldResemble, verdict.Summary{})
			})
		})

		Convey("When an evaluation misses its timestamp", func() {
			e := eval(0.9, 0.9, 0.9, 0.9)
			e.EvaluatedAt = time.Time{}

			_, ok, err := c.Compute([]model.Evaluation{e}, 4)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When there are more evaluations than questions", func() {
			evals := []model.Evaluation{
				eval(0.5, 0.5, 0.5, 0.5),
				eval(0.5, 0.5, 0.5, 0.5),
			}
			_, _, err := c.Compute(evals, 1)
			So(errors.Is(err, verdict.ErrInconsistent), ShouldBeTrue)
		})

		Convey("When the average sits exactly on the pass threshold", func() {
			sum, ok, err := c.Compute([]model.Evaluation{eval(0.7, 0.7, 0.7, 0.7)}, 1)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(sum.PassStatus, ShouldEqual, model.PassStatusPass)
		})

		Convey("When the average is just below the pass threshold", func() {
			sum, _, err := c.Compute([]model.Evaluation{eval(0.69, 0.69, 0.69, 0.69)}, 1)
			So(err, ShouldBeNil)
			So(sum.PassStatus, ShouldEqual, model.PassStatusFail)
		})
	})
}

func TestComputer_Knowledge(t *testing.T) {
	Convey("Given the default knowledge cuts", t, func() {
		c := verdict.NewComputer()

		cases := []struct {
			avg   float64
			level model.KnowledgeLevel
		}{
			{0.0, model.KnowledgeBeginner},
			{0.39, model.KnowledgeBeginner},
			{0.4, model.KnowledgeIntermediate},
			{0.59, model.KnowledgeIntermediate},
			{0.6, model.KnowledgeAdvanced},
			{0.79, model.KnowledgeAdvanced},
			{0.8, model.KnowledgeExpert},
			{1.0, model.KnowledgeExpert},
		}
		for _, tc := range cases {
			So(c.Knowledge(tc.avg), ShouldEqual, tc.level)
		}
	})
}

func TestComputer_Options(t *testing.T) {
	Convey("Given custom thresholds", t, func() {
		c := verdict.NewComputer(
			verdict.WithPassThreshold(0.5),
			verdict.WithKnowledgeCuts(0.3, 0.5, 0.9),
		)

		So(c.Pass(0.5), ShouldEqual, model.PassStatusPass)
		So(c.Pass(0.49), ShouldEqual, model.PassStatusFail)
		So(c.Knowledge(0.85), ShouldEqual, model.KnowledgeAdvanced)
		So(c.Knowledge(0.9), ShouldEqual, model.KnowledgeExpert)

		Convey("When the cuts are not strictly increasing they are ignored", func() {
			d := verdict.NewComputer(verdict.WithKnowledgeCuts(0.6, 0.5, 0.9))
			So(d.Knowledge(0.45), ShouldEqual, model.KnowledgeIntermediate)
		})
	})
}
