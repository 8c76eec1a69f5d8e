package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	kv "github.com/yeisme/filevault/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "inspect the cache key-value store",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list registered kv backends",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")

			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:     "keys [pattern]",
		Short:   "list cache keys matching a glob pattern",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}

			return withKV(cmd, func(c *kv.Client) error {
				keys, err := c.Keys(cmd.Context(), pattern)
				if err != nil {
					return err
				}

				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}

				return nil
			})
		},
	}

	kvGetCmd = &cobra.Command{
		Use:     "get <key>",
		Short:   "print a cached value",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKV(cmd, func(c *kv.Client) error {
				b, err := c.Get(cmd.Context(), args[0])
				if errors.Is(err, kv.ErrNotFound) {
					return fmt.Errorf("key %q not found", args[0])
				}

				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), string(b))

				return nil
			})
		},
	}

	kvDelCmd = &cobra.Command{
		Use:     "del <key>...",
		Short:   "evict cache keys",
		Aliases: []string{"rm"},
		Args:    cobra.MinimumNArgs(1),
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKV(cmd, func(c *kv.Client) error {
				for _, k := range args {
					if err := c.Delete(cmd.Context(), k); err != nil {
						return fmt.Errorf("delete %s: %w", k, err)
					}
				}

				return nil
			})
		},
	}
)

func withKV(cmd *cobra.Command, fn func(c *kv.Client) error) error {
	c, err := kv.NewKVClientFromConfig(cmd.Context(), configs.GetConfig().KV)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c)
}

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	kvCmd.AddCommand(kvListCmd, kvKeysCmd, kvGetCmd, kvDelCmd)
	rootCmd.AddCommand(kvCmd)
}
