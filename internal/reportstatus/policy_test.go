package reportstatus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reports/internal/reportstatus"
)

var _ = Describe("Report status policy", func() {
	type edge struct{ from, to reportstatus.Status }

	legal := map[edge]bool{
		{reportstatus.Created, reportstatus.Submitted}:   true,
		{reportstatus.Submitted, reportstatus.Validated}: true,
		{reportstatus.Submitted, reportstatus.Rejected}:  true,
		{reportstatus.Submitted, reportstatus.Paid}:      true,
		{reportstatus.Validated, reportstatus.Paid}:      true,
		{reportstatus.Rejected, reportstatus.Created}:    true,
	}

	Describe("CanTransitionTo", func() {
		It("allows exactly the lifecycle edges out of the 25 pairs", func() {
			allowed, denied := 0, 0
			for _, from := range reportstatus.All() {
				for _, to := range reportstatus.All() {
					got := reportstatus.CanTransitionTo(from, to)
					Expect(got).To(Equal(legal[edge{from, to}]), "%s -> %s", from, to)
					if got {
						allowed++
					} else {
						denied++
					}
				}
			}
			Expect(allowed).To(Equal(6))
			Expect(denied).To(Equal(19))
		})

		It("never allows self loops", func() {
			for _, s := range reportstatus.All() {
				Expect(reportstatus.CanTransitionTo(s, s)).To(BeFalse())
			}
		})

		It("returns false for unknown statuses", func() {
			Expect(reportstatus.CanTransitionTo("ARCHIVED", reportstatus.Submitted)).To(BeFalse())
			Expect(reportstatus.CanTransitionTo(reportstatus.Created, "ARCHIVED")).To(BeFalse())
		})
	})

	Describe("CanModify", func() {
		DescribeTable("modifiable statuses",
			func(s reportstatus.Status, expected bool) {
				Expect(reportstatus.CanModify(s)).To(Equal(expected))
			},
			Entry("created", reportstatus.Created, true),
			Entry("submitted", reportstatus.Submitted, true),
			Entry("validated", reportstatus.Validated, false),
			Entry("rejected", reportstatus.Rejected, false),
			Entry("paid", reportstatus.Paid, false),
			Entry("unknown", reportstatus.Status("DRAFT"), false),
		)
	})

	Describe("CanDelete", func() {
		It("only allows deleting created reports", func() {
			for _, s := range reportstatus.All() {
				Expect(reportstatus.CanDelete(s)).To(Equal(s == reportstatus.Created), string(s))
			}
		})
	})

	Describe("NextStatuses", func() {
		It("lists the outgoing edges", func() {
			Expect(reportstatus.NextStatuses(reportstatus.Created)).To(ConsistOf(reportstatus.Submitted))
			Expect(reportstatus.NextStatuses(reportstatus.Submitted)).To(ConsistOf(reportstatus.Validated, reportstatus.Rejected, reportstatus.Paid))
			Expect(reportstatus.NextStatuses(reportstatus.Validated)).To(ConsistOf(reportstatus.Paid))
			Expect(reportstatus.NextStatuses(reportstatus.Rejected)).To(ConsistOf(reportstatus.Created))
		})

		It("is empty for paid and unknown statuses", func() {
			Expect(reportstatus.NextStatuses(reportstatus.Paid)).To(BeEmpty())
			Expect(reportstatus.NextStatuses("UNKNOWN")).To(BeEmpty())
		})

		It("agrees with CanTransitionTo", func() {
			for _, from := range reportstatus.All() {
				for _, to := range reportstatus.NextStatuses(from) {
					Expect(reportstatus.CanTransitionTo(from, to)).To(BeTrue())
				}
			}
		})

		It("does not expose internal state", func() {
			next := reportstatus.NextStatuses(reportstatus.Submitted)
			next[0] = reportstatus.Created
			Expect(reportstatus.CanTransitionTo(reportstatus.Submitted, reportstatus.Created)).To(BeFalse())
			Expect(reportstatus.NextStatuses(reportstatus.Submitted)).NotTo(ContainElement(reportstatus.Created))
		})
	})

	Describe("Parse", func() {
		It("accepts known statuses case-insensitively", func() {
			s, err := reportstatus.Parse(" submitted ")
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(reportstatus.Submitted))
		})

		It("rejects unknown values", func() {
			_, err := reportstatus.Parse("archived")
			Expect(err).To(MatchError(ContainSubstring("unknown report status")))
		})
	})
})
