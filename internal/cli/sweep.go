package cli

import (
	"fmt"

	"salonbook/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Complete confirmed appointments older than AUTO_COMPLETE_AFTER once",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bootstrap()
			if err != nil {
				return err
			}
			defer e.close()

			res, err := app.NewSweeper(e.cfg, e.db, e.log).Sweep(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			e.log.Info("sweep finished", zap.Int64("completed", res.Completed), zap.Time("cutoff", res.Cutoff))
			fmt.Fprintf(cmd.OutOrStdout(), "completed %d appointments\n", res.Completed)
			return nil
		},
	}
}
