package auth_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/msherr/research-assistant/internal/auth"
	"github.com/msherr/research-assistant/internal/session"
	"github.com/msherr/research-assistant/internal/store"
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		credsPath string
		svc       *auth.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		credsPath = filepath.Join(GinkgoT().TempDir(), "credentials.yaml")
		svc = auth.NewService(
			store.NewYAMLCredentials(credsPath),
			session.NewMemoryStore(time.Hour),
		).WithCost(bcrypt.MinCost)
	})

	Describe("Register", func() {
		It("stores a hash, not the password", func() {
			Expect(svc.Register(ctx, "ada", "s3cret", "s3cret")).To(Succeed())

			b, err := os.ReadFile(credsPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(ContainSubstring("ada"))
			Expect(string(b)).NotTo(ContainSubstring("s3cret"))
		})

		It("requires every field", func() {
			Expect(svc.Register(ctx, "", "pw", "pw")).To(MatchError(auth.ErrMissingFields))
			Expect(svc.Register(ctx, "ada", "", "")).To(MatchError(auth.ErrMissingFields))
			Expect(svc.Register(ctx, "  ", "pw", "pw")).To(MatchError(auth.ErrMissingFields))
		})

		It("requires matching passwords", func() {
			Expect(svc.Register(ctx, "ada", "one", "two")).To(MatchError(auth.ErrPasswordMismatch))
		})

		It("rejects taken usernames", func() {
			Expect(svc.Register(ctx, "ada", "pw", "pw")).To(Succeed())
			Expect(svc.Register(ctx, "ada", "other", "other")).To(MatchError(auth.ErrUserExists))
		})

		It("rejects passwords bcrypt cannot hash", func() {
			long := strings.Repeat("x", 73)
			Expect(svc.Register(ctx, "ada", long, long)).To(MatchError(auth.ErrPasswordTooLong))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			Expect(svc.Register(ctx, "ada", "s3cret", "s3cret")).To(Succeed())
		})

		It("opens a session", func() {
			sess, err := svc.Login(ctx, "ada", "s3cret")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Username).To(Equal("ada"))

			got, err := svc.Authenticate(ctx, sess.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("ada"))
		})

		It("reports unknown users", func() {
			_, err := svc.Login(ctx, "bob", "s3cret")
			Expect(err).To(MatchError(auth.ErrUnknownUser))
		})

		It("reports wrong passwords", func() {
			_, err := svc.Login(ctx, "ada", "guess")
			Expect(err).To(MatchError(auth.ErrWrongPassword))
		})
	})

	Describe("Logout", func() {
		It("invalidates the token", func() {
			Expect(svc.Register(ctx, "ada", "pw", "pw")).To(Succeed())
			sess, err := svc.Login(ctx, "ada", "pw")
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Logout(ctx, sess.Token)).To(Succeed())
			_, err = svc.Authenticate(ctx, sess.Token)
			Expect(err).To(MatchError(session.ErrNotFound))
		})

		It("ignores empty tokens", func() {
			Expect(svc.Logout(ctx, "")).To(Succeed())
			_, err := svc.Authenticate(ctx, "")
			Expect(err).To(MatchError(session.ErrNotFound))
		})
	})
})
