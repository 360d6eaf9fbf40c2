package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize studio storage",
		Long:  "Create the configuration and data directories, then attach and detach the storage backend once.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attach()
			if err != nil {
				return err
			}
			cfg, _ := a.storageConfig()
			if err := backend.Detach(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, map[string]string{
					"config":  a.configDir,
					"data":    cfg.DataDir,
					"backend": cfg.Backend,
				})
			}
			fmt.Fprintln(out, "Studio initialized successfully")
			fmt.Fprintln(out, "  config: ", a.configDir)
			fmt.Fprintln(out, "  data:   ", cfg.DataDir)
			fmt.Fprintln(out, "  backend:", cfg.Backend)
			return nil
		},
	}
}
