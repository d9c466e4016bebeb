package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/razor/internal/dagger"
)

// Build and return a directory holding the razor binary for linux/amd64
func (r *Razor) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	path := "linux/amd64/"

	build := r.goContainer().
		WithEnvVariable("GOOS", "linux").
		WithEnvVariable("GOARCH", "amd64").
		WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/razor"})

	return dag.Directory().WithDirectory(path, build.Directory(path))
}

// BuildRelease compiles a versioned release binary with embedded version info
func (r *Razor) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/RobbieRazor/robbies-razor-benchmarks/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/RobbieRazor/robbies-razor-benchmarks/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/RobbieRazor/robbies-razor-benchmarks/pkg/utils.Buildtime=%s'", buildtime),
	}

	return r.Build(ctx, strings.Join(ldflags, " "))
}
