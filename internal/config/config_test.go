package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/hirein/engine/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.AnswerQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.PassThreshold, convey.ShouldEqual, 0.7)
			convey.So(cfg.KnowledgeIntermediateCut, convey.ShouldEqual, 0.4)
			convey.So(cfg.KnowledgeAdvancedCut, convey.ShouldEqual, 0.6)
			convey.So(cfg.KnowledgeExpertCut, convey.ShouldEqual, 0.8)
			convey.So(cfg.JoinTokenTTL, convey.ShouldEqual, time.Hour)
			convey.So(cfg.JoinTokenLength, convey.ShouldEqual, 32)
			convey.So(cfg.JudgeLatencyMinMS, convey.ShouldEqual, 80)
			convey.So(cfg.JudgeLatencyMaxMS, convey.ShouldEqual, 150)
			convey.So(cfg.GeminiModel, convey.ShouldBeEmpty)
			convey.So(cfg.MaxListLimit, convey.ShouldEqual, 100)
		})
	})
}
