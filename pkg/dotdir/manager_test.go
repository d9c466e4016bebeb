package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	// isolate moves into an empty working directory with an empty HOME.
	isolate := func() string {
		dir := filepath.Join(tmpDir, "work")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { os.Chdir(origDir) })

		home := filepath.Join(tmpDir, "home")
		Expect(os.MkdirAll(home, 0o755)).To(Succeed())
		origHome := os.Getenv("HOME")
		Expect(os.Setenv("HOME", home)).To(Succeed())
		DeferCleanup(func() { os.Setenv("HOME", origHome) })

		return dir
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Target", func() {
		It("creates the override directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("prefers the override over a local .razor dir", func() {
			work := isolate()
			Expect(os.Mkdir(filepath.Join(work, ".razor"), 0o755)).To(Succeed())

			override := filepath.Join(tmpDir, "override")
			result, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(override))
		})

		It("returns the local .razor dir over the home one", func() {
			work := isolate()
			local := filepath.Join(work, ".razor")
			Expect(os.Mkdir(local, 0o755)).To(Succeed())
			Expect(os.Mkdir(filepath.Join(tmpDir, "home", ".razor"), 0o755)).To(Succeed())

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(local))
		})

		It("falls back to the home .razor dir", func() {
			isolate()
			home := filepath.Join(tmpDir, "home", ".razor")
			Expect(os.Mkdir(home, 0o755)).To(Succeed())

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(home))
		})

		It("returns an empty path when no .razor dir exists", func() {
			isolate()

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeEmpty())
		})
	})

	Describe("Init", func() {
		It("creates the home .razor dir when nothing exists", func() {
			isolate()

			result, err := m.Init("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(tmpDir, "home", ".razor")))
			Expect(result).To(BeADirectory())
		})

		It("resolves an existing dir without creating another", func() {
			work := isolate()
			local := filepath.Join(work, ".razor")
			Expect(os.Mkdir(local, 0o755)).To(Succeed())

			result, err := m.Init("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(local))
			Expect(filepath.Join(tmpDir, "home", ".razor")).NotTo(BeADirectory())
		})
	})

	Describe("HistoryPath", func() {
		It("places the database inside the resolved dir", func() {
			dir := filepath.Join(tmpDir, "cfg")
			result, err := m.HistoryPath(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(dir, "history.sqlite")))
		})
	})
})
