package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/omerlavanet/dev-server/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	writeConfig := func(content string) string {
		path := filepath.Join(tempDir, "server.yml")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	Describe("Load", func() {
		Context("with a valid config file", func() {
			It("loads every section", func() {
				path := writeConfig(`
server:
  address: ":9090"
  environment: staging
destinations:
  - "http://localhost:9001"
  - "http://localhost:9002"
mirror:
  timeout: 5s
response:
  default_status: 201
  default_body: "fallback"
probe:
  interval: 30s
logging:
  level: debug
`)

				cfg, err := config.Load(path, "")

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":9090"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvStaging))
				Expect(cfg.Destinations).To(Equal([]string{"http://localhost:9001", "http://localhost:9002"}))
				Expect(cfg.Mirror.Timeout).To(Equal("5s"))
				Expect(cfg.Response.DefaultStatus).To(Equal(201))
				Expect(cfg.Response.DefaultBody).To(Equal("fallback"))
				Expect(cfg.Probe.Interval).To(Equal("30s"))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
			})
		})

		Context("with a missing config file", func() {
			It("falls back to defaults", func() {
				cfg, err := config.Load(filepath.Join(tempDir, "absent.yml"), "")

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":8080"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvDev))
				Expect(cfg.Destinations).To(BeEmpty())
				Expect(cfg.Mirror.Timeout).To(Equal("30s"))
				Expect(cfg.Response.DefaultStatus).To(Equal(200))
			})
		})

		Context("with a listen override", func() {
			It("takes precedence over the file", func() {
				path := writeConfig(`
server:
  address: ":9090"
`)

				cfg, err := config.Load(path, "127.0.0.1:7070")

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal("127.0.0.1:7070"))
			})
		})

		Context("destination list normalization", func() {
			It("drops empty entries and duplicates, keeping order", func() {
				path := writeConfig(`
destinations:
  - "http://localhost:9001"
  - ""
  - "   "
  - "http://localhost:9002"
  - "http://localhost:9001"
`)

				cfg, err := config.Load(path, "")

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Destinations).To(Equal([]string{"http://localhost:9001", "http://localhost:9002"}))
			})

			It("accepts an empty destination list", func() {
				cfg, err := config.Load(writeConfig(`destinations: []`), "")

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Destinations).To(BeEmpty())
			})

			It("does not reject malformed destination URLs at load time", func() {
				cfg, err := config.Load(writeConfig(`
destinations:
  - "not a url"
`), "")

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Destinations).To(Equal([]string{"not a url"}))
			})
		})

		Context("validation failures", func() {
			It("rejects a malformed listen address", func() {
				_, err := config.Load(writeConfig(`
server:
  address: "no-port"
`), "")

				Expect(err).To(HaveOccurred())
			})

			It("rejects an unknown environment", func() {
				_, err := config.Load(writeConfig(`
server:
  environment: "production"
`), "")

				Expect(err).To(HaveOccurred())
			})

			It("rejects an unparseable mirror timeout", func() {
				_, err := config.Load(writeConfig(`
mirror:
  timeout: "soon"
`), "")

				Expect(err).To(HaveOccurred())
			})

			It("rejects a default status outside the HTTP range", func() {
				_, err := config.Load(writeConfig(`
response:
  default_status: 42
`), "")

				Expect(err).To(HaveOccurred())
			})

			It("rejects an unknown log level", func() {
				_, err := config.Load(writeConfig(`
logging:
  level: "verbose"
`), "")

				Expect(err).To(HaveOccurred())
			})
		})
	})
})
