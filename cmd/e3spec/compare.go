package main

import (
	"github.com/spf13/cobra"

	"github.com/frederic-klein/e3spec/internal/compare"
	"github.com/frederic-klein/e3spec/internal/spec"
)

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare SOURCE TARGET",
		Short: "Show modules and versions TARGET adds over SOURCE",
		Long: `Compare prints, as YAML, every module of TARGET missing from SOURCE and
every version of a shared module that only TARGET lists. Modules or versions
that only SOURCE has are not reported.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(a.runCompare(cmd, args[0], args[1]))
		},
	}
}

func (a *app) runCompare(cmd *cobra.Command, sourcePath, targetPath string) error {
	source, err := spec.Load(sourcePath)
	if err != nil {
		return err
	}
	target, err := spec.Load(targetPath)
	if err != nil {
		return err
	}

	diff := compare.Difference(compare.ModuleMap(source), compare.ModuleMap(target))
	a.logger.Debug("Compared specifications", "source", sourcePath, "target", targetPath, "modules", len(diff))
	return compare.Print(cmd.OutOrStdout(), diff)
}
