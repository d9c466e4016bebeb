package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/logger"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func parseJSONLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text records by default", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("store accepted", "confidence", 0.99)

			Expect(buf.String()).To(ContainSubstring("store accepted"))
			Expect(buf.String()).To(ContainSubstring("confidence=0.99"))
		})

		It("emits debug records only when debug is enabled", func() {
			var on, off bytes.Buffer
			logger.New(logger.WithWriter(&on), logger.WithDebug(true)).Debug("evicted")
			logger.New(logger.WithWriter(&off), logger.WithDebug(false)).Debug("evicted")

			Expect(on.String()).To(ContainSubstring("evicted"))
			Expect(off.String()).To(BeEmpty())
		})

		It("writes one JSON object per record", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON))
			l.Info("batch sampled", "size", 32)

			parsed := parseJSONLine(&buf)
			Expect(parsed["msg"]).To(Equal("batch sampled"))
			Expect(parsed["size"]).To(BeNumerically("==", 32))
		})

		It("renders through the pretty handler", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatPretty))
			l.Info("benchmark finished")

			Expect(buf.String()).To(ContainSubstring("benchmark finished"))
		})

		It("fans out to every writer", func() {
			var a, b bytes.Buffer
			logger.New(logger.WithWriters(&a, &b)).Info("twice")

			Expect(a.String()).To(ContainSubstring("twice"))
			Expect(b.String()).To(ContainSubstring("twice"))
		})

		It("adds the call site when source is enabled", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON), logger.WithSource(true))
			l.Info("located")

			Expect(parseJSONLine(&buf)).To(HaveKey("source"))
		})

		It("skips nil writers", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriters(nil, &buf)).Info("kept")
			Expect(buf.String()).To(ContainSubstring("kept"))
		})

		It("nests grouped attributes", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON))
			l.WithGroup("bank").Info("stats", "size", 3)

			group, ok := parseJSONLine(&buf)["bank"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["size"]).To(BeNumerically("==", 3))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
			Expect(func() {
				l.With("k", "v").WithGroup("g").Error("dropped")
			}).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("dispatches records and bound attributes to all loggers", func() {
			var text, js bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&text)),
				logger.New(logger.WithWriter(&js), logger.WithFormat(logger.FormatJSON)),
			)

			multi.With("component", "replay").Info("added")

			Expect(text.String()).To(ContainSubstring("component=replay"))
			Expect(parseJSONLine(&js)["component"]).To(Equal("replay"))
		})

		It("keeps writing after one handler fails", func() {
			var ok bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(failingWriter{})),
				nil,
				logger.New(logger.WithWriter(&ok)),
			)

			err := multi.Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))
			Expect(err).To(MatchError(ContainSubstring("disk full")))
			Expect(ok.String()).To(ContainSubstring("still here"))
		})

		It("respects each handler's level", func() {
			var debug, info bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
				logger.New(logger.WithWriter(&info)),
			)

			multi.Debug("verbose only")

			Expect(debug.String()).To(ContainSubstring("verbose only"))
			Expect(info.String()).To(BeEmpty())
		})
	})
})

var _ = Describe("ForCLI", func() {
	It("writes only to the terminal writer without a log file", func() {
		var term bytes.Buffer
		l, closeFn, err := logger.ForCLI(&term, false, "")
		Expect(err).NotTo(HaveOccurred())
		defer closeFn()

		l.Info("benchmark started")
		Expect(term.String()).To(ContainSubstring("benchmark started"))
	})

	It("appends JSON records to the log file", func() {
		var term bytes.Buffer
		path := filepath.Join(GinkgoT().TempDir(), "razor.log")

		l, closeFn, err := logger.ForCLI(&term, true, path)
		Expect(err).NotTo(HaveOccurred())
		l.Debug("evicted", "key", "abc")
		Expect(closeFn()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"evicted"`))
		Expect(term.String()).To(ContainSubstring("evicted"))
	})

	It("leaves the source out of the log file without debug", func() {
		path := filepath.Join(GinkgoT().TempDir(), "razor.log")

		l, closeFn, err := logger.ForCLI(io.Discard, false, path)
		Expect(err).NotTo(HaveOccurred())
		l.Info("bench finished")
		Expect(closeFn()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("bench finished"))
		Expect(string(data)).NotTo(ContainSubstring(`"source"`))
	})

	It("fails for an unwritable log file", func() {
		_, _, err := logger.ForCLI(io.Discard, false, filepath.Join(GinkgoT().TempDir(), "missing", "razor.log"))
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})
