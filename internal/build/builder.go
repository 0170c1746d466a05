package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/e3spec/internal/fetch"
	"github.com/frederic-klein/e3spec/internal/prompt"
	"github.com/frederic-klein/e3spec/internal/spec"
)

// Options selects which build steps run.
type Options struct {
	CloneDir    string // where sources and RELEASE.local go
	Clone       bool
	CreateLocal bool
}

// Builder plans a build, asks for confirmation and then prepares sources,
// linkage files and the install tree.
type Builder struct {
	fetcher fetch.Fetcher
	prompt  prompt.Confirmer
	logger  *log.Logger
	out     io.Writer
	opts    Options
}

// NewBuilder creates a builder. Summary and install paths are written to out.
func NewBuilder(f fetch.Fetcher, p prompt.Confirmer, logger *log.Logger, out io.Writer, opts Options) *Builder {
	return &Builder{
		fetcher: f,
		prompt:  p,
		logger:  logger,
		out:     out,
		opts:    opts,
	}
}

// Build materializes doc for roots. Nothing is written before the plan is
// computed and the operator has confirmed it.
func (b *Builder) Build(ctx context.Context, doc *spec.Document, roots []string) (*Plan, error) {
	plan, err := Materialize(doc, roots)
	if err != nil {
		return nil, err
	}

	if err := WriteSummary(b.out, plan); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	ok, err := b.prompt.Confirm("\nConfirm")
	if err != nil {
		return nil, fmt.Errorf("confirming build: %w", err)
	}
	if !ok {
		return nil, ErrAborted
	}

	if b.opts.Clone || b.opts.CreateLocal {
		if err := b.ensureCloneDir(); err != nil {
			return nil, err
		}
	}

	for _, rp := range plan.Roots {
		if b.opts.Clone {
			if err := b.cloneModules(ctx, plan.Sources); err != nil {
				return nil, err
			}
		}
		if b.opts.CreateLocal {
			b.logger.Info("Setting up configuration files", "root", rp.Root)
			if err := WriteLinkage(b.opts.CloneDir, rp.Linkage); err != nil {
				return nil, err
			}
		}
		if err := b.createTree(plan, rp); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

func (b *Builder) ensureCloneDir() error {
	_, err := os.Stat(b.opts.CloneDir)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking clone directory: %w", err)
	}
	if err := os.MkdirAll(b.opts.CloneDir, 0755); err != nil {
		return fmt.Errorf("creating clone directory: %w", err)
	}
	b.logger.Info("Directory created", "path", b.opts.CloneDir)
	return nil
}

func (b *Builder) cloneModules(ctx context.Context, sources []Source) error {
	b.logger.Info("Cloning repositories")
	jobs := make([]fetch.Job, len(sources))
	for i, s := range sources {
		jobs[i] = fetch.Job{
			Module:   s.Module,
			URL:      s.URL,
			DestPath: filepath.Join(b.opts.CloneDir, s.Module),
		}
	}

	for _, r := range b.fetcher.Fetch(ctx, jobs) {
		switch {
		case r.Error != nil:
			return fmt.Errorf("fetching %s: %w", r.Job.Module, r.Error)
		case r.Present:
			b.logger.Info("Module already exists", "module", r.Job.Module)
		default:
			b.logger.Info("Fake cloning", "url", r.Job.URL, "dest", r.Job.DestPath, "placeholder", r.Job.IsPlaceholder())
		}
	}
	return nil
}

func (b *Builder) createTree(plan *Plan, rp RootPlan) error {
	b.logger.Info("Building...", "root", rp.Root)
	for _, w := range plan.Warnings {
		if w.Root == rp.Root {
			b.logger.Warn(w.Reason, "module", w.Module)
		}
	}
	for _, p := range rp.Paths {
		if _, err := fmt.Fprintln(b.out, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteLinkage writes content to dir/RELEASE.local, replacing any existing file.
func WriteLinkage(dir, content string) error {
	path := filepath.Join(dir, LinkageFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", LinkageFileName, err)
	}
	return nil
}
