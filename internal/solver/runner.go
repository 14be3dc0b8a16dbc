// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package solver runs CalculiX (ccx) on input decks, either from a local
// installation or inside a docker or podman container.
package solver

import (
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
)

const (
	binCCX    = "ccx"
	binDocker = "docker"
	binPodman = "podman"

	// DefaultImage is used by container runners when none is configured.
	DefaultImage = "calculix/ccx:latest"
)

// Runner executes ccx for one job.
type Runner interface {
	// Name returns the runner name ("ccx", "docker", or "podman").
	Name() string

	// Available reports whether the runner can execute jobs.
	Available() bool

	// Run solves workDir/job.inp, writing results next to the deck.
	Run(workDir, job string, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunIn(dir, name string, args []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunIn(dir, name string, args []string, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stdout
	return cmd.Run()
}

// localRunner calls ccx from PATH.
type localRunner struct {
	exec executor
}

func (r *localRunner) Name() string { return binCCX }

func (r *localRunner) Available() bool {
	_, err := r.exec.LookPath(binCCX)
	return err == nil
}

func (r *localRunner) Run(workDir, job string, stdout io.Writer) error {
	if err := r.exec.RunIn(workDir, binCCX, []string{job}, stdout); err != nil {
		return fmt.Errorf("running %s %s: %w", binCCX, job, err)
	}
	return nil
}

// containerRunner runs ccx inside an image with the deck directory mounted
// at /work. Docker and Podman share the same arguments.
type containerRunner struct {
	bin   string
	image string
	exec  executor
}

func (r *containerRunner) Name() string { return r.bin }

func (r *containerRunner) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *containerRunner) Run(workDir, job string, stdout io.Writer) error {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", workDir, err)
	}
	args := []string{"run", "--rm", "-v", abs + ":/work", "-w", "/work", r.image, binCCX, job}
	if err := r.exec.RunIn(workDir, r.bin, args, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, r.image, err)
	}
	return nil
}

var defaultExec = &osExecutor{}

// DetectRunner prefers a local ccx, then docker, then podman. image selects
// the container image (DefaultImage when empty).
func DetectRunner(image string) (Runner, error) {
	return detectRunner(defaultExec, image)
}

func detectRunner(exec executor, image string) (Runner, error) {
	if image == "" {
		image = DefaultImage
	}

	local := &localRunner{exec: exec}
	if local.Available() {
		return local, nil
	}
	for _, bin := range []string{binDocker, binPodman} {
		r := &containerRunner{bin: bin, image: image, exec: exec}
		if r.Available() {
			return r, nil
		}
	}

	return nil, fmt.Errorf(
		"no solver available: %s not on PATH and neither %s nor %s operational",
		binCCX, binDocker, binPodman,
	)
}
