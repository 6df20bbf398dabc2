// Package vcs reads git working-tree status and caches it per directory.
package vcs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/b/tabdeck/pkg/tools"
)

// Status holds git repository information for one working tree.
type Status struct {
	IsRepo    bool      `json:"is_repo"`
	Branch    string    `json:"branch,omitempty"` // "" when detached
	Head      string    `json:"head,omitempty"`   // abbreviated commit, "" before the first commit
	Upstream  string    `json:"upstream,omitempty"`
	Ahead     int       `json:"ahead"`
	Behind    int       `json:"behind"`
	Staged    int       `json:"staged"`
	Unstaged  int       `json:"unstaged"`
	Untracked int       `json:"untracked"`
	Conflicts int       `json:"conflicts"`
	CheckedAt time.Time `json:"checked_at"`
}

// Dirty reports whether the working tree has any change.
func (s Status) Dirty() bool {
	return s.Staged+s.Unstaged+s.Untracked+s.Conflicts > 0
}

// Parse reads the output of `git status --porcelain=v2 --branch`.
func Parse(out string) Status {
	st := Status{IsRepo: true}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "#":
			parseHeader(&st, fields[1:])
		case "1", "2":
			if len(fields) < 2 || len(fields[1]) != 2 {
				continue
			}
			if fields[1][0] != '.' {
				st.Staged++
			}
			if fields[1][1] != '.' {
				st.Unstaged++
			}
		case "u":
			st.Conflicts++
		case "?":
			st.Untracked++
		}
	}
	return st
}

func parseHeader(st *Status, f []string) {
	if len(f) < 2 {
		return
	}
	switch f[0] {
	case "branch.oid":
		if f[1] != "(initial)" {
			st.Head = f[1][:min(len(f[1]), 7)]
		}
	case "branch.head":
		if f[1] != "(detached)" {
			st.Branch = f[1]
		}
	case "branch.upstream":
		st.Upstream = f[1]
	case "branch.ab":
		if len(f) < 3 {
			return
		}
		st.Ahead, _ = strconv.Atoi(strings.TrimPrefix(f[1], "+"))
		st.Behind, _ = strconv.Atoi(strings.TrimPrefix(f[2], "-"))
	}
}

// Runner is the subset of tools.Runner the cache needs.
type Runner interface {
	Run(ctx context.Context, dir, tool string, args ...string) (tools.Output, error)
}

type entry struct {
	status Status
	at     time.Time
}

// Cache keeps the last status per directory for TTL.
type Cache struct {
	runner Runner
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

func NewCache(runner Runner, ttl time.Duration) *Cache {
	return &Cache{
		runner:  runner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached status for dir when it is younger than the TTL and
// refreshes it otherwise.
func (c *Cache) Get(ctx context.Context, dir string) (Status, error) {
	c.mu.Lock()
	e, ok := c.entries[dir]
	c.mu.Unlock()
	if ok && c.now().Sub(e.at) < c.ttl {
		return e.status, nil
	}
	return c.Refresh(ctx, dir)
}

// Refresh runs git and replaces the cached entry. A directory outside any
// repository is not an error: it yields a Status with IsRepo false.
func (c *Cache) Refresh(ctx context.Context, dir string) (Status, error) {
	out, err := c.runner.Run(ctx, dir, "git", "status", "--porcelain=v2", "--branch")
	var st Status
	switch {
	case err == nil:
		st = Parse(out.Stdout)
	case notARepo(err):
		st = Status{}
	default:
		return Status{}, fmt.Errorf("git status in %s: %w", dir, err)
	}
	now := c.now()
	st.CheckedAt = now

	c.mu.Lock()
	c.entries[dir] = entry{status: st, at: now}
	c.mu.Unlock()
	return st, nil
}

// Invalidate drops the cached entry for dir.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	delete(c.entries, dir)
	c.mu.Unlock()
}

func notARepo(err error) bool {
	var execErr *tools.ExecError
	return errors.As(err, &execErr) && strings.Contains(strings.ToLower(execErr.Stderr), "not a git repository")
}
