package webhook

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Puller updates a working tree from its remote with "git pull".  Pulls
// are serialized: a second webhook arriving mid-pull waits for the first.
type Puller struct {
	dir     string
	remote  string
	branch  string
	timeout time.Duration
	git     string

	mu sync.Mutex
}

// NewPuller returns a Puller for the working tree at dir.  An empty
// branch pulls the remote's default for the current branch.
func NewPuller(dir, remote, branch string, timeout time.Duration) *Puller {
	if remote == "" {
		remote = "origin"
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Puller{dir: dir, remote: remote, branch: branch, timeout: timeout, git: "git"}
}

// Dir returns the working tree directory.
func (p *Puller) Dir() string { return p.dir }

// Remote returns the remote pulled from.
func (p *Puller) Remote() string { return p.remote }

// Branch returns the configured branch, possibly empty.
func (p *Puller) Branch() string { return p.branch }

// Pull runs git -C <dir> pull <remote> [<branch>] and returns the combined
// output.  Stderr is included in the error on failure.
func (p *Puller) Pull(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{"-C", p.dir, "pull", "--ff-only", p.remote}
	if p.branch != "" {
		args = append(args, p.branch)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.git, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)",
			strings.Join(args[2:], " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String() + stderr.String()), nil
}
