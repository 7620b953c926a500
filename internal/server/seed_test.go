package server_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/khushboocodes/QuickDesk/internal/auth"
	"github.com/khushboocodes/QuickDesk/internal/repository/memory"
	"github.com/khushboocodes/QuickDesk/internal/server"
)

var _ = Describe("SeedDemo", func() {
	It("creates demo data once", func() {
		ctx := context.Background()
		repos := server.MemoryRepositories(memory.NewStore())

		report, err := server.SeedDemo(ctx, repos, bcrypt.MinCost, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Users).To(Equal(3))
		Expect(report.Categories).To(Equal(4))
		Expect(report.Tickets).To(Equal(3))
		Expect(report.Comments).To(Equal(3))

		admin, err := repos.Users.GetByEmail(ctx, "admin@quickdesk.local")
		Expect(err).NotTo(HaveOccurred())
		Expect(auth.ComparePassword(admin.PasswordHash, server.DemoPassword)).To(Succeed())

		again, err := server.SeedDemo(ctx, repos, bcrypt.MinCost, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(server.SeedReport{}))
	})
})
