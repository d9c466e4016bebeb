package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses tenths of seconds above a second", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("Mark", func() {
		It("distinguishes success from failure", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
			Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("returns the error from fn and ends with the message", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")

			err := cliui.Step(&buf, "running benchmark", func() error { return boom })
			Expect(err).To(MatchError(boom))

			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\r")
			Expect(lines[len(lines)-1]).To(ContainSubstring("running benchmark"))
			Expect(buf.String()).To(HaveSuffix("\n"))
		})
	})

	Describe("Table", func() {
		It("renders the header and every row", func() {
			var buf bytes.Buffer
			cliui.Table(&buf, []string{"ID", "HITS"}, [][]string{{"a1", "10"}, {"b2", "20"}})

			out := buf.String()
			Expect(out).To(ContainSubstring("ID"))
			Expect(out).To(ContainSubstring("HITS"))
			Expect(out).To(ContainSubstring("a1"))
			Expect(out).To(ContainSubstring("20"))
		})
	})

	Describe("Report", func() {
		It("renders every section and row", func() {
			var buf bytes.Buffer
			cliui.Report(&buf, []cliui.Section{
				{Name: "Inference Calls", Rows: [][2]string{{"Memory hits", "800"}}},
				{Name: "Cost Proxies", Rows: [][2]string{{"Token savings", "640000"}}},
			})

			out := buf.String()
			Expect(out).To(ContainSubstring("Inference Calls"))
			Expect(out).To(ContainSubstring("Memory hits"))
			Expect(out).To(ContainSubstring("640000"))
		})
	})
})
