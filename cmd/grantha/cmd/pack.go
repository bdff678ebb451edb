package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samhita-labs/grantha/internal/config"
	"github.com/samhita-labs/grantha/internal/pack"
	"github.com/samhita-labs/grantha/internal/ui"
)

func newPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Manage the semantic search pack",
	}
	cmd.AddCommand(newPackInstallCmd())
	cmd.AddCommand(newPackStatusCmd())
	cmd.AddCommand(newPackDeleteCmd())
	return cmd
}

func newPackInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download and verify the semantic pack",
		Long: `Download the semantic pack from the configured distribution base,
verify checksums, and enable semantic search. Interrupted installs
resume where they left off; Ctrl-C cancels cleanly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Semantic.BaseURL == "" {
				return fmt.Errorf("no pack source configured; set semantic.base_url in %s or GRANTHA_PACK_URL", config.UserConfigPath())
			}

			renderer := ui.NewProgressRenderer(os.Stdout)
			inst, err := buildInstaller(cfg, slog.Default(), pack.WithProgress(renderer.Update))
			if err != nil {
				return err
			}
			if inst.Enabled() {
				fmt.Printf("pack %s is already installed; verifying files\n", inst.Version())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				inst.Cancel()
			}()

			if err := inst.Start(ctx); err != nil {
				if inst.State() == pack.StateCancelled {
					renderer.Fail("install cancelled; rerun 'grantha pack install' to resume")
					return nil
				}
				renderer.Fail(err.Error())
				return err
			}

			st := inst.Status()
			renderer.Done(fmt.Sprintf("pack %s installed: %d files, %s",
				st.Version, st.Files, ui.FormatBytes(st.TotalBytes)))
			return nil
		},
	}
}

func newPackStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the local pack state",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inst, err := buildInstaller(cfg, slog.Default())
			if err != nil {
				return err
			}
			st := inst.Status()

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			fmt.Printf("state:    %s\n", st.State)
			if st.Version != "" {
				fmt.Printf("version:  %s\n", st.Version)
			}
			fmt.Printf("files:    %d\n", st.Files)
			fmt.Printf("size:     %s\n", ui.FormatBytes(st.TotalBytes))
			fmt.Printf("location: %s\n", st.Dir)
			if st.DiskTotalBytes > 0 {
				fmt.Printf("disk:     %s free of %s\n",
					ui.FormatBytes(int64(st.DiskFreeBytes)), ui.FormatBytes(int64(st.DiskTotalBytes)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newPackDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the downloaded pack",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inst, err := buildInstaller(cfg, slog.Default())
			if err != nil {
				return err
			}
			if err := inst.DeletePack(); err != nil {
				return err
			}
			fmt.Println("pack deleted")
			return nil
		},
	}
}
