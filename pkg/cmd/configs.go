package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
)

var (
	showSecrets bool

	configCmd = &cobra.Command{
		Use:               "config",
		Short:             "inspect the effective configuration",
		PersistentPreRunE: loadConfig,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file in use",
		Run: func(cmd *cobra.Command, _ []string) {
			used := configs.GetViper().ConfigFileUsed()
			if used == "" {
				used = "(none, defaults and environment only)"
			}

			fmt.Fprintln(cmd.OutOrStdout(), used)
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the merged config as JSON, secrets masked",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *configs.GetConfig()
			if !showSecrets {
				cfg = cfg.Redacted()
			}

			b, err := sonic.ConfigStd.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	configCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "validate the config and exit",
		Run: func(cmd *cobra.Command, _ []string) {
			// loadConfig 已完成校验
			fmt.Fprintln(cmd.OutOrStdout(), "config ok")
		},
	}
)

// registerConfigsCommands 注册 config 子命令.
func registerConfigsCommands() {
	configShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print passwords and keys unmasked")

	configCmd.AddCommand(configPathCmd, configShowCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}
