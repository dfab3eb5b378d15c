package judge_test

import (
	"context"
	"testing"
	"time"

	"github.com/hirein/engine/internal/domain/judge"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryJudge_Score(t *testing.T) {
	Convey("Given an in-memory judge with short latency", t, func() {
		j := judge.NewInMemoryJudge(
			judge.WithLatencyRange(time.Millisecond, 2*time.Millisecond),
		)
		ctx := context.Background()

		Convey("When judging a substantial answer", func() {
			in := judge.Input{
				Question: "Explain how a hash map handles collisions.",
				Answer: "Hash maps typically resolve collisions with separate chaining, " +
					"storing colliding entries in a bucket list, or with open addressing, " +
					"probing for the next free slot. Load factor and resize policy keep " +
					"lookups close to constant time.",
			}
			res, err := j.Score(ctx, in)

			Convey("Then every axis is normalized", func() {
				So(err, ShouldBeNil)
				So(res.Scores.Valid(), ShouldBeTrue)
				So(res.QuickScore, ShouldBeBetweenOrEqual, 1, 5)
				So(res.Tokens.Completion, ShouldBeGreaterThan, 0)
			})

			Convey("And repeating the same input yields the same result", func() {
				again, err := j.Score(ctx, in)
				So(err, ShouldBeNil)
				So(again.Scores, ShouldResemble, res.Scores)
				So(again.QuickScore, ShouldEqual, res.QuickScore)
			})
		})

		Convey("When judging an empty answer", func() {
			res, err := j.Score(ctx, judge.Input{Question: "Anything?", Answer: ""})
			So(err, ShouldBeNil)
			So(res.Overall(), ShouldBeLessThan, 0.3)
		})

		Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := j.Score(cancelled, judge.Input{Question: "q", Answer: "a"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestQuickScore(t *testing.T) {
	Convey("Given the quick-score bucketing", t, func() {
		cases := []struct {
			overall float64
			want    int
		}{
			{0.0, 1},
			{0.15, 1},
			{0.21, 2},
			{0.4, 2},
			{0.41, 3},
			{0.75, 4},
			{0.81, 5},
			{1.0, 5},
		}
		for _, tc := range cases {
			So(judge.QuickScore(tc.overall), ShouldEqual, tc.want)
		}
	})
}
