// Razor CI
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/razor/internal/dagger"
)

// Razor is the main module for the razor benchmarks CI pipeline
type Razor struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Razor CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Razor {
	return &Razor{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted. go-sqlite3
// needs CGO, so tests and builds share it.
func (r *Razor) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", r.Source)
}

// Test runs the unit tests via "go test"
func (r *Razor) Test(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// Bench runs the memory gate benchmark and the replay simulation with their
// default workloads and returns the combined JSON reports.
func (r *Razor) Bench(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"sh", "-c", "go run ./cli/razor bench --json && go run ./cli/razor replay --json"}).
		Stdout(ctx)
}
