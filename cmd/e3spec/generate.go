package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/e3spec/internal/reconcile"
	"github.com/frederic-klein/e3spec/internal/spec"
)

type generateFlags struct {
	infile  string
	outfile string
	envFile string
	exclude []string
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a specification from an installed e3 environment",
		Long: `Generate scans the modules installed in the e3 environment named by
EPICS_BASE, E3_REQUIRE_NAME and E3_REQUIRE_VERSION and writes a specification.

Without --infile every installed module is listed and the result is marked
unordered. With --infile the module list and order of that specification are
kept, modules it lists but that are not installed get a null version, and
installed modules it does not list are reported under removed_modules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(a.runGenerate(f))
		},
	}

	cmd.Flags().StringVarP(&f.infile, "infile", "i", "", "Existing specification defining module order")
	cmd.Flags().StringVarP(&f.outfile, "outfile", "o", "", "Output specification path")
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Read environment bindings from a dotenv file")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Ignore installed modules matching a glob (repeatable)")
	_ = cmd.MarkFlagRequired("outfile")

	return cmd
}

func (a *app) runGenerate(f generateFlags) error {
	lookup := a.lookupEnv
	if f.envFile != "" {
		fileEnv, err := godotenv.Read(f.envFile)
		if err != nil {
			return fmt.Errorf("reading env file: %w", err)
		}
		lookup = withFallback(a.lookupEnv, fileEnv)
	}

	env, err := reconcile.ResolveEnvironment(lookup)
	if err != nil {
		return err
	}
	a.logger.Debug("Resolved environment", "path", env.Path())

	var prior *spec.Document
	if f.infile != "" {
		prior, err = spec.Load(f.infile)
		if err != nil {
			return fmt.Errorf("you need a valid (existing) specification file: %w", err)
		}
	}

	doc, err := reconcile.Generate(env, prior, reconcile.Options{
		Infile:  f.infile,
		Exclude: f.exclude,
	})
	if err != nil {
		return err
	}

	for _, stub := range doc.RemovedModules {
		a.logger.Warn("Installed module is not listed in the specification", "module", stub.Name)
	}
	if !doc.Meta.Ordered {
		a.logger.Info("Specification is unordered; set meta.ordered after checking the module order")
	}

	if err := spec.Save(doc, f.outfile); err != nil {
		return err
	}
	a.logger.Info("Generated specification", "path", f.outfile, "modules", len(doc.Modules))
	return nil
}

// withFallback looks keys up in primary first and then in fallback.
func withFallback(primary func(string) (string, bool), fallback map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok && v != "" {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}
