package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/e3spec/internal/gitlab"
)

type protectFlags struct {
	apply      bool
	pushLevel  int
	mergeLevel int
}

func newProtectCmd(a *app) *cobra.Command {
	var f protectFlags

	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Protect branches and tags of module repositories",
		Long: `Protect replaces branch or tag protection rules of a GitLab project.
Nothing is changed unless --apply is given.`,
	}
	cmd.PersistentFlags().BoolVar(&f.apply, "apply", false, "Apply the change instead of printing it")

	branchCmd := &cobra.Command{
		Use:   "branch PROJECT BRANCH",
		Short: "Protect a branch (name or wildcard)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.gitlabClient(f).ProtectBranch(cmd.Context(), args[0], args[1], f.pushLevel, f.mergeLevel)
			return classify(err)
		},
	}
	branchCmd.Flags().IntVar(&f.pushLevel, "push-level", gitlab.DeveloperAccess, "Minimum access level allowed to push")
	branchCmd.Flags().IntVar(&f.mergeLevel, "merge-level", gitlab.DeveloperAccess, "Minimum access level allowed to merge")

	tagCmd := &cobra.Command{
		Use:   "tag PROJECT TAG",
		Short: "Protect a tag (name or wildcard)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.gitlabClient(f).ProtectTag(cmd.Context(), args[0], args[1])
			return classify(err)
		},
	}

	urlCmd := &cobra.Command{
		Use:   "url PROJECT",
		Short: "Print the HTTP clone URL of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.gitlabClient(f).ProjectURL(cmd.Context(), args[0])
			if err != nil {
				return classify(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
			return err
		},
	}

	cmd.AddCommand(branchCmd, tagCmd, urlCmd)
	return cmd
}

func (a *app) gitlabClient(f protectFlags) *gitlab.Client {
	return gitlab.NewClient(a.cfg.GitLab.URL, a.cfg.GitLab.Token, !f.apply, a.logger)
}
