package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/RobbieRazor/robbies-razor-benchmarks/cmd/razor/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := []string{}
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    bytes.Buffer
	)

	run := func(args ...string) error {
		out.Reset()
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", tmpDir, "")
		cmd.SetOut(&out)
		cmd.SetErr(GinkgoWriter)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("set subcommand", func() {
		It("writes config.toml into the config directory", func() {
			Expect(run("set", "memory_bank.capacity", "500")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("memory_bank.capacity"))

			data, err := os.ReadFile(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("capacity = 500"))
		})

		It("creates a missing config directory", func() {
			tmpDir = filepath.Join(tmpDir, "nested", ".razor")
			Expect(run("set", "replay.replace", "true")).To(Succeed())
			Expect(filepath.Join(tmpDir, "config.toml")).To(BeARegularFile())
		})

		It("rejects unknown keys", func() {
			err := run("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("rejects values that do not parse", func() {
			Expect(run("set", "bench.total_queries", "many")).To(HaveOccurred())
		})

		It("rejects values that fail validation", func() {
			Expect(run("set", "memory_bank.stability_threshold", "1.5")).To(HaveOccurred())
			Expect(filepath.Join(tmpDir, "config.toml")).NotTo(BeAnExistingFile())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "replay.seed")).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("returns the default when nothing is set", func() {
			Expect(run("get", "replay.entropy_weight")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("0.5"))
		})

		It("returns a previously set value", func() {
			Expect(run("set", "replay.seed", "42")).To(Succeed())
			Expect(run("get", "replay.seed")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("42"))
		})

		It("marks an empty value as not set", func() {
			Expect(run("get", "history.sqlite_path")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "nope")).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(run("set", "bench.seed", "9")).To(Succeed())
			Expect(run("list")).To(Succeed())

			for _, key := range []string{
				"memory_bank.capacity",
				"replay.rarity_weight",
				"bench.seed",
				"history.sqlite_path",
			} {
				Expect(out.String()).To(ContainSubstring(key))
			}
			Expect(out.String()).To(ContainSubstring("Using config file"))
		})

		It("rejects arguments", func() {
			Expect(run("list", "extra")).To(HaveOccurred())
		})
	})
})
