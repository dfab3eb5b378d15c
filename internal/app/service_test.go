package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hirein/engine/internal/adapters/repository"
	service "github.com/hirein/engine/internal/app"
	"github.com/hirein/engine/internal/domain/judge"
	"github.com/hirein/engine/internal/domain/lifecycle"
	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/internal/domain/token"
	"github.com/hirein/engine/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// failingJudge never scores, so turns stay unscored and tests can drive
// RecordJudgedAnswer deterministically.
type failingJudge struct{}

func (failingJudge) Score(context.Context, judge.Input) (judge.Result, error) {
	return judge.Result{}, judge.ErrUnavailable
}

func newTestService(t *testing.T, opts ...service.Option) (*service.Service, context.Context) {
	t.Helper()
	base := []service.Option{
		service.WithWorkerCount(1),
		service.WithQueueSize(64),
		service.WithJudge(failingJudge{}),
	}
	svc := service.New(append(base, opts...)...)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	t.Cleanup(svc.Stop)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc, ctx
}

func schedule(ctx context.Context, svc *service.Service, appID string) (model.Interview, error) {
	return svc.ScheduleInterview(ctx, service.ScheduleRequest{
		ApplicationID: appID,
		CandidateID:   "cand-1",
		JobID:         "job-1",
		ScheduledByID: "recruiter-1",
		Type:          model.TypeTechnical,
		ScheduledAt:   time.Now().Add(24 * time.Hour),
		Duration:      time.Hour,
	})
}

func judged(score float64) judge.Result {
	return judge.Result{
		Scores: model.DimensionScores{
			FactualAccuracy: score,
			Completeness:    score,
			Relevance:       score,
			Coherence:       score,
		},
		QuickScore: judge.QuickScore(score),
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(500),
			service.WithPassThreshold(0.6),
			service.WithKnowledgeCuts(0.3, 0.5, 0.7),
			service.WithTokenTTL(30*time.Minute),
			service.WithTokenLength(24),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_InterviewFlow(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc, ctx := newTestService(t)

		Convey("When a candidate applies and an interview is scheduled", func() {
			app, err := svc.CreateApplication(ctx, "job-1", "cand-1")
			So(err, ShouldBeNil)
			So(app.Status, ShouldEqual, lifecycle.ApplicationApplied)

			iv, err := schedule(ctx, svc, app.ID)
			So(err, ShouldBeNil)

			Convey("Then the interview is scheduled with a fresh join token", func() {
				So(iv.Status, ShouldEqual, lifecycle.InterviewScheduled)
				So(len(iv.JoinToken), ShouldEqual, 32)
				So(iv.TokenExpiry.After(time.Now()), ShouldBeTrue)
				So(iv.TokenConsumed, ShouldBeFalse)
			})

			Convey("And the application moved to INTERVIEW", func() {
				got, gerr := svc.GetApplication(ctx, app.ID)
				So(gerr, ShouldBeNil)
				So(got.Status, ShouldEqual, lifecycle.ApplicationInterview)
			})

			Convey("When the candidate joins with a bad token", func() {
				_, jerr := svc.JoinInterview(ctx, iv.ID, "not-a-valid-token!")
				So(errors.Is(jerr, token.ErrRejected), ShouldBeTrue)
			})

			Convey("When the candidate joins, starts, answers, and the judge scores", func() {
				joined, jerr := svc.JoinInterview(ctx, iv.ID, iv.JoinToken)
				So(jerr, ShouldBeNil)
				So(joined.Status, ShouldEqual, lifecycle.InterviewJoined)
				So(joined.TokenConsumed, ShouldBeTrue)

				Convey("Then the token is single-use", func() {
					_, again := svc.JoinInterview(ctx, iv.ID, iv.JoinToken)
					So(errors.Is(again, token.ErrConsumed), ShouldBeTrue)
				})

				started, serr := svc.StartInterview(ctx, iv.ID)
				So(serr, ShouldBeNil)
				So(started.Status, ShouldEqual, lifecycle.InterviewInProgress)

				questions := []string{"q1", "q2", "q3", "q4"}
				turns := make([]model.ChatTurn, 0, len(questions))
				for _, q := range questions {
					turn, aerr := svc.AskQuestion(ctx, iv.ID, q)
					So(aerr, ShouldBeNil)
					turns = append(turns, turn)
				}
				So(turns[0].Level, ShouldEqual, 1)
				So(turns[3].Level, ShouldEqual, 4)

				for _, turn := range turns {
					answered, werr := svc.SubmitAnswer(ctx, turn.ID, "a reasonable answer")
					So(werr, ShouldBeNil)
					So(answered.Answered(), ShouldBeTrue)
					So(answered.Score, ShouldBeNil)
				}

				// Score three of the four turns directly, as the workers would.
				for _, turn := range turns[:3] {
					rerr := svc.RecordJudgedAnswer(ctx, model.AnswerEvent{
						TurnID:      turn.ID,
						InterviewID: iv.ID,
						Question:    turn.Question,
						Answer:      "a reasonable answer",
					}, judged(0.75))
					So(rerr, ShouldBeNil)
				}

				Convey("Then the aggregate covers the scored turns", func() {
					res, gerr := svc.GetResult(ctx, iv.ID)
					So(gerr, ShouldBeNil)
					So(res.EvaluatedCount, ShouldEqual, 3)
					So(res.TotalQuestions, ShouldEqual, 4)
					So(res.AverageScore, ShouldAlmostEqual, 0.75, 0.0001)
					So(res.PassStatus, ShouldEqual, model.PassStatusPass)
					So(res.KnowledgeLevel, ShouldEqual, model.KnowledgeAdvanced)
					So(res.SummaryResult, ShouldNotBeEmpty)
				})

				Convey("And the interview completes with a verdict in place", func() {
					done, cerr := svc.CompleteInterview(ctx, iv.ID)
					So(cerr, ShouldBeNil)
					So(done.Status, ShouldEqual, lifecycle.InterviewCompleted)
					So(done.CompletedAt, ShouldNotBeNil)

					Convey("And the application can move to OFFER", func() {
						got, oerr := svc.AdvanceApplication(ctx, app.ID, lifecycle.EventAppOffer)
						So(oerr, ShouldBeNil)
						So(got.Status, ShouldEqual, lifecycle.ApplicationOffer)
					})
				})
			})
		})
	})
}

func TestService_CompleteRequiresVerdict(t *testing.T) {
	Convey("Given an interview with an answered but unscored turn", t, func() {
		svc, ctx := newTestService(t)

		iv, err := schedule(ctx, svc, "")
		So(err, ShouldBeNil)
		_, err = svc.JoinInterview(ctx, iv.ID, iv.JoinToken)
		So(err, ShouldBeNil)
		_, err = svc.StartInterview(ctx, iv.ID)
		So(err, ShouldBeNil)

		turn, err := svc.AskQuestion(ctx, iv.ID, "q1")
		So(err, ShouldBeNil)
		_, err = svc.SubmitAnswer(ctx, turn.ID, "an answer nobody judged")
		So(err, ShouldBeNil)

		Convey("When completing the interview", func() {
			_, cerr := svc.CompleteInterview(ctx, iv.ID)

			Convey("Then it is blocked until a verdict exists", func() {
				So(errors.Is(cerr, service.ErrVerdictPending), ShouldBeTrue)

				got, gerr := svc.GetInterview(ctx, iv.ID)
				So(gerr, ShouldBeNil)
				So(got.Status, ShouldEqual, lifecycle.InterviewInProgress)
			})
		})
	})
}

func TestService_CompleteZeroQuestions(t *testing.T) {
	Convey("Given an in-progress interview where nothing was asked", t, func() {
		svc, ctx := newTestService(t)

		iv, err := schedule(ctx, svc, "")
		So(err, ShouldBeNil)
		_, err = svc.JoinInterview(ctx, iv.ID, iv.JoinToken)
		So(err, ShouldBeNil)
		_, err = svc.StartInterview(ctx, iv.ID)
		So(err, ShouldBeNil)

		Convey("When completing the interview", func() {
			done, cerr := svc.CompleteInterview(ctx, iv.ID)

			Convey("Then it completes without a stored result", func() {
				So(cerr, ShouldBeNil)
				So(done.Status, ShouldEqual, lifecycle.InterviewCompleted)

				_, gerr := svc.GetResult(ctx, iv.ID)
				So(errors.Is(gerr, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_ResultGate(t *testing.T) {
	Convey("Given an application", t, func() {
		svc, ctx := newTestService(t)

		app, err := svc.CreateApplication(ctx, "job-1", "cand-1")
		So(err, ShouldBeNil)

		Convey("When rejecting before any interview exists", func() {
			got, rerr := svc.AdvanceApplication(ctx, app.ID, lifecycle.EventAppReject)

			Convey("Then the move is allowed", func() {
				So(rerr, ShouldBeNil)
				So(got.Status, ShouldEqual, lifecycle.ApplicationRejected)
			})
		})

		Convey("When an interview is linked but carries no verdict", func() {
			_, serr := schedule(ctx, svc, app.ID)
			So(serr, ShouldBeNil)

			_, oerr := svc.AdvanceApplication(ctx, app.ID, lifecycle.EventAppOffer)

			Convey("Then terminal moves are blocked", func() {
				So(errors.Is(oerr, service.ErrResultRequired), ShouldBeTrue)
			})
		})
	})
}

func TestService_Reschedule(t *testing.T) {
	Convey("Given a scheduled interview", t, func() {
		svc, ctx := newTestService(t)

		iv, err := schedule(ctx, svc, "")
		So(err, ShouldBeNil)

		Convey("When rescheduling to a new time", func() {
			newTime := time.Now().Add(48 * time.Hour)
			moved, rerr := svc.RescheduleInterview(ctx, iv.ID, newTime)

			Convey("Then the interview is re-scheduled with a fresh token", func() {
				So(rerr, ShouldBeNil)
				So(moved.Status, ShouldEqual, lifecycle.InterviewScheduled)
				So(moved.ScheduledAt.Equal(newTime), ShouldBeTrue)
				So(moved.JoinToken, ShouldNotEqual, iv.JoinToken)
				So(moved.TokenConsumed, ShouldBeFalse)
			})

			Convey("Then the old token is dead", func() {
				So(rerr, ShouldBeNil)
				_, jerr := svc.JoinInterview(ctx, iv.ID, iv.JoinToken)
				So(errors.Is(jerr, token.ErrRejected), ShouldBeTrue)
			})
		})

		Convey("When completing straight from SCHEDULED", func() {
			_, cerr := svc.CompleteInterview(ctx, iv.ID)

			Convey("Then the transition is illegal", func() {
				So(errors.Is(cerr, lifecycle.ErrIllegalTransition), ShouldBeTrue)
			})
		})
	})
}

func TestService_RetryJudging(t *testing.T) {
	Convey("Given answered turns the judge never scored", t, func() {
		svc, ctx := newTestService(t)

		iv, err := schedule(ctx, svc, "")
		So(err, ShouldBeNil)
		_, err = svc.JoinInterview(ctx, iv.ID, iv.JoinToken)
		So(err, ShouldBeNil)
		_, err = svc.StartInterview(ctx, iv.ID)
		So(err, ShouldBeNil)

		for i := 0; i < 2; i++ {
			turn, aerr := svc.AskQuestion(ctx, iv.ID, "q")
			So(aerr, ShouldBeNil)
			_, aerr = svc.SubmitAnswer(ctx, turn.ID, "an answer")
			So(aerr, ShouldBeNil)
		}
		unansweredTurn, err := svc.AskQuestion(ctx, iv.ID, "never answered")
		So(err, ShouldBeNil)
		So(unansweredTurn.Answered(), ShouldBeFalse)

		Convey("When retrying judging", func() {
			n, rerr := svc.RetryJudging(ctx, iv.ID)

			Convey("Then only answered, unscored turns are re-enqueued", func() {
				So(rerr, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})
	})
}

func TestService_AggregateIdempotent(t *testing.T) {
	Convey("Given an interview with one scored turn", t, func() {
		svc, ctx := newTestService(t)

		iv, err := schedule(ctx, svc, "")
		So(err, ShouldBeNil)
		_, err = svc.JoinInterview(ctx, iv.ID, iv.JoinToken)
		So(err, ShouldBeNil)
		_, err = svc.StartInterview(ctx, iv.ID)
		So(err, ShouldBeNil)

		turn, err := svc.AskQuestion(ctx, iv.ID, "q1")
		So(err, ShouldBeNil)
		_, err = svc.SubmitAnswer(ctx, turn.ID, "an answer")
		So(err, ShouldBeNil)
		err = svc.RecordJudgedAnswer(ctx, model.AnswerEvent{
			TurnID: turn.ID, InterviewID: iv.ID, Question: "q1", Answer: "an answer",
		}, judged(0.9))
		So(err, ShouldBeNil)

		Convey("When aggregating repeatedly", func() {
			first, ok1, aerr1 := svc.Aggregate(ctx, iv.ID)
			second, ok2, aerr2 := svc.Aggregate(ctx, iv.ID)

			Convey("Then the result is stable", func() {
				So(aerr1, ShouldBeNil)
				So(aerr2, ShouldBeNil)
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(second.EvaluatedCount, ShouldEqual, first.EvaluatedCount)
				So(second.AverageScore, ShouldAlmostEqual, first.AverageScore, 0.0001)
				So(second.PassStatus, ShouldEqual, first.PassStatus)
			})
		})

		Convey("When a duplicate judging delivery arrives", func() {
			derr := svc.RecordJudgedAnswer(ctx, model.AnswerEvent{
				TurnID: turn.ID, InterviewID: iv.ID, Question: "q1", Answer: "an answer",
			}, judged(0.9))

			Convey("Then it is absorbed without a second evaluation", func() {
				So(derr, ShouldBeNil)
				evals, lerr := svc.ListEvaluations(ctx, iv.ID)
				So(lerr, ShouldBeNil)
				So(len(evals), ShouldEqual, 1)
			})
		})
	})
}

func TestService_DeleteInterview(t *testing.T) {
	Convey("Given an application with one scheduled interview", t, func() {
		svc, ctx := newTestService(t)

		app, err := svc.CreateApplication(ctx, "job-1", "cand-1")
		So(err, ShouldBeNil)
		iv, err := schedule(ctx, svc, app.ID)
		So(err, ShouldBeNil)

		Convey("When deleting the interview", func() {
			derr := svc.DeleteInterview(ctx, iv.ID)

			Convey("Then the interview and its data are gone", func() {
				So(derr, ShouldBeNil)
				_, gerr := svc.GetInterview(ctx, iv.ID)
				So(errors.Is(gerr, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And the result gate no longer sees the interview", func() {
				So(derr, ShouldBeNil)
				got, rerr := svc.AdvanceApplication(ctx, app.ID, lifecycle.EventAppReject)
				So(rerr, ShouldBeNil)
				So(got.Status, ShouldEqual, lifecycle.ApplicationRejected)
			})
		})
	})
}

func TestService_Stats(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc, ctx := newTestService(t)

		_, err := svc.CreateApplication(ctx, "job-1", "cand-1")
		So(err, ShouldBeNil)
		_, err = schedule(ctx, svc, "")
		So(err, ShouldBeNil)

		Convey("When fetching stats", func() {
			stats := svc.GetStats()

			Convey("Then counters reflect the stored entities", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["interviews"], ShouldEqual, 1)
				So(stats["applications"], ShouldEqual, 1)
				So(stats["results"], ShouldEqual, 0)
			})
		})
	})
}
