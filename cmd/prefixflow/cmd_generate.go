package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/prefixflow/prefixflow/pkg/deploy"
	"github.com/prefixflow/prefixflow/pkg/spec"
)

func newGenerateCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate prefix-filter configuration files",
		Long: `Generate Junos set-statement files for every router and policy in the
config without touching any device. Each router gets one timestamped file
under the output directory.

Examples:
  prefixflow generate -c configs/prefix_policies.yaml
  prefixflow generate -o /tmp/generated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner(outputDir)
			if err != nil {
				return err
			}
			defer cleanup()

			outcomes, err := runner.Run(deploy.Options{Apply: false})
			deploy.PrintSummary(os.Stdout, outcomes, false)
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "generated-config directory")
	return cmd
}

// buildRunner loads the config and assembles a deploy.Runner with the audit
// log attached. cleanup closes the audit log.
func buildRunner(outputDir string) (*deploy.Runner, func(), error) {
	path, err := requireConfigPath()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := spec.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if outputDir == "" {
		outputDir = userSettings.GetOutputDir()
	}

	runner := deploy.NewRunner(cfg, outputDir)
	logger := openAudit()
	runner.Audit = logger
	return runner, func() { logger.Close() }, nil
}
