package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rentalfigs/internal/config"
	"rentalfigs/internal/publish"
)

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	var bucket, prefix string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the figures of the last run to object storage",
		Long: `Upload the PNGs, the run manifest and any exported figure data to an
S3-compatible bucket. Objects are keyed <prefix>/<run id>/<file>.

The endpoint and credentials come from the publish section of the config
or the FIGS_PUBLISH_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			a, err := newApp(rootOpts, func(cfg *config.Config) {
				if flags.Changed("bucket") {
					cfg.Publish.Bucket = bucket
				}
				if flags.Changed("prefix") {
					cfg.Publish.Prefix = prefix
				}
			})
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			store, err := publish.NewS3Store(a.cfg.Publish)
			if err != nil {
				return err
			}

			result, err := publish.NewPublisher(store, a.cfg.Publish, a.paths, a.logger).Publish(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "published %d object(s) to %s (run %s)\n", len(result.Objects), result.Bucket, result.RunID)
			for _, key := range result.Objects {
				fmt.Fprintf(out, "  %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "destination bucket")
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix inside the bucket")
	return cmd
}
