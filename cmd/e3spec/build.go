package main

import (
	"github.com/spf13/cobra"

	"github.com/frederic-klein/e3spec/internal/build"
	"github.com/frederic-klein/e3spec/internal/fetch"
	"github.com/frederic-klein/e3spec/internal/prompt"
	"github.com/frederic-klein/e3spec/internal/spec"
)

type buildFlags struct {
	buildDirs []string
	cloneDir  string
	noClone   bool
	noLocal   bool
	yes       bool
}

func newBuildCmd(a *app) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build SPECIFICATION",
		Short: "Build modules from a specification",
		Long: `Build computes the install tree of every module version in an ordered
specification for each build directory, prepares module sources and writes
RELEASE.local. The specification must have meta.ordered set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(a.runBuild(cmd, args[0], f))
		},
	}

	cmd.Flags().StringSliceVarP(&f.buildDirs, "build-dir", "b", nil, "Target build directory (repeatable, default from config)")
	cmd.Flags().StringVar(&f.cloneDir, "clone-dir", "", "Directory for module sources and RELEASE.local (default from config)")
	cmd.Flags().BoolVar(&f.noClone, "no-clone", false, "Do not fetch module sources")
	cmd.Flags().BoolVar(&f.noLocal, "no-local", false, "Do not write RELEASE.local")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, specPath string, f buildFlags) error {
	a.logger.Debug("Loading specification", "path", specPath)
	doc, err := spec.Load(specPath)
	if err != nil {
		return err
	}

	roots := f.buildDirs
	if len(roots) == 0 {
		roots = a.cfg.Build.Dirs
	}
	opts := build.Options{
		CloneDir:    a.cfg.Build.CloneDir,
		Clone:       a.cfg.Build.Clone && !f.noClone,
		CreateLocal: a.cfg.Build.CreateLocal && !f.noLocal,
	}
	if f.cloneDir != "" {
		opts.CloneDir = f.cloneDir
	}

	var confirm prompt.Confirmer = prompt.NewLine(cmd.InOrStdin(), cmd.OutOrStdout())
	if f.yes {
		confirm = prompt.Always{}
	}

	builder := build.NewBuilder(fetch.NewPlaceholderFetcher(), confirm, a.logger, cmd.OutOrStdout(), opts)
	plan, err := builder.Build(cmd.Context(), doc, roots)
	if err != nil {
		return err
	}

	a.logger.Info("Build planned", "paths", len(plan.Paths()), "warnings", len(plan.Warnings))
	return nil
}
