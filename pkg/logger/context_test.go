package logger_test

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/frahmantamala/expense-reports/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("context logging", func() {
	It("should accumulate fields across With calls", func() {
		ctx := logger.With(context.Background(), "trace_id", "t-1")
		ctx = logger.With(ctx, "user_id", int64(7))

		Expect(logger.Fields(ctx)).To(Equal([]any{"trace_id", "t-1", "user_id", int64(7)}))
		Expect(logger.Fields(context.Background())).To(BeEmpty())
	})

	It("should not let sibling contexts share fields", func() {
		parent := logger.With(context.Background(), "trace_id", "t-1")
		left := logger.With(parent, "side", "left")
		right := logger.With(parent, "side", "right")

		Expect(logger.Fields(left)).To(Equal([]any{"trace_id", "t-1", "side", "left"}))
		Expect(logger.Fields(right)).To(Equal([]any{"trace_id", "t-1", "side", "right"}))
	})

	It("should bind the context fields onto an injected logger", func() {
		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		ctx := logger.With(context.Background(), "trace_id", "t-9")
		logger.Bind(ctx, base).Info("report created")
		Expect(buf.String()).To(ContainSubstring("trace_id=t-9"))
		Expect(buf.String()).To(ContainSubstring("report created"))
	})

	It("should hand back the same logger when nothing is bound", func() {
		base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		Expect(logger.Bind(context.Background(), base)).To(BeIdenticalTo(base))
	})
})
