package probes

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/dshills/tribunal/internal/evidence"
)

const cloneErrorMax = 400

// Subject is the material handed to every probe: the repository URL, a
// sandboxed shallow checkout of it, and the optional report document.
// RepoDir is empty when the clone failed; CloneErr carries the reason.
type Subject struct {
	URL      string
	RepoDir  string
	CloneErr string
	DocPath  string
}

// Probe collects forensic evidence for the dimensions it owns. Probes never
// return errors: every failure mode degrades to Evidence{Found: false} so the
// completeness barrier downstream still holds.
type Probe interface {
	Name() string
	Collect(ctx context.Context, sub Subject) map[string][]evidence.Evidence
}

// Runner clones the subject once into a temporary directory and fans the
// probes out concurrently over it. Probes write disjoint namespaced keys, so
// merging their maps cannot collide.
type Runner struct {
	probes       []Probe
	cloneTimeout time.Duration
}

// NewRunner builds a Runner over the given probes.
func NewRunner(cloneTimeout time.Duration, probes ...Probe) *Runner {
	return &Runner{probes: probes, cloneTimeout: cloneTimeout}
}

// Run collects evidence from every probe into the store. The checkout is
// removed before Run returns; evidence carries only metadata about it.
func (r *Runner) Run(ctx context.Context, repoURL, docPath string, store *evidence.Store) {
	sub := Subject{URL: repoURL, DocPath: docPath}

	dir, err := cloneSandboxed(ctx, repoURL, r.cloneTimeout)
	if err != nil {
		sub.CloneErr = truncate(err.Error(), cloneErrorMax)
	} else {
		sub.RepoDir = dir
		defer os.RemoveAll(dir)
	}

	results := make([]map[string][]evidence.Evidence, len(r.probes))
	var wg sync.WaitGroup
	for i, p := range r.probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			results[i] = p.Collect(ctx, sub)
		}(i, p)
	}
	wg.Wait()

	for _, m := range results {
		store.Merge(m)
	}
}

// cloneSandboxed clones repoURL at depth 1 into a fresh temporary directory.
// The caller owns the directory on success.
func cloneSandboxed(ctx context.Context, repoURL string, timeout time.Duration) (string, error) {
	dir, err := os.MkdirTemp("", "tribunal-clone-*")
	if err != nil {
		return "", fmt.Errorf("creating sandbox directory: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cloneCtx, "git", "clone", "--depth=1", repoURL, dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(dir)
		if cloneCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("clone timed out after %s", timeout)
		}
		return "", fmt.Errorf("git clone failed: %s", strings.TrimSpace(string(out)))
	}
	return dir, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
