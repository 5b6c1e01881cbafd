package probe_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/omerlavanet/dev-server/internal/destination"
	"github.com/omerlavanet/dev-server/internal/probe"
)

func TestProbe(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Probe Suite")
}

var _ = Describe("Watch", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	})

	It("keeps a responding destination marked reachable", func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer upstream.Close()

		d, err := destination.Parse(upstream.URL)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go probe.Watch(ctx, d, 50*time.Millisecond, log, nil)

		Consistently(d.Reachable, 300*time.Millisecond).Should(BeTrue())
	})

	It("treats any completed response as reachable, even a 500", func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		d, err := destination.Parse(upstream.URL)
		Expect(err).NotTo(HaveOccurred())
		d.SetReachable(false)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go probe.Watch(ctx, d, 50*time.Millisecond, log, nil)

		Eventually(d.Reachable, time.Second).Should(BeTrue())
	})

	It("marks a dead destination unreachable", func() {
		// Port 1 refuses connections.
		d, err := destination.Parse("http://127.0.0.1:1")
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go probe.Watch(ctx, d, 50*time.Millisecond, log, nil)

		Eventually(d.Reachable, time.Second).Should(BeFalse())
	})

	It("stops when the context is cancelled", func() {
		d, err := destination.Parse("http://127.0.0.1:1")
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			probe.Watch(ctx, d, 10*time.Millisecond, log, nil)
		}()

		cancel()
		Eventually(done, time.Second).Should(BeClosed())
	})
})
