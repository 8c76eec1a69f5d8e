package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/backend"
	s3c "github.com/yeisme/filevault/pkg/internal/storage/s3"
)

const probeTimeout = 5 * time.Second

var (
	storageCmd = &cobra.Command{
		Use:   "storage",
		Short: "Storage backend related commands",
	}

	// 检查本地根目录与对象存储是否可用，以及当前模式下新文件会落在哪个后端.
	storageProbeCmd = &cobra.Command{
		Use:     "probe",
		Short:   "check the local root and the object storage bucket",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()
			out := cmd.OutOrStdout()

			local, err := backend.NewLocalStore(cfg.Storage.Local, nil)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "local root:   %s\n", local.Root())

			handle := s3c.NewHandle(cfg.S3)

			var object *backend.ObjectStore
			if handle.Configured() {
				object = backend.NewObjectStore(handle, cfg.Storage.PresignExpiry)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
			defer cancel()

			if !handle.Configured() {
				fmt.Fprintln(out, "object store: not configured")
			} else {
				client, err := handle.Client(ctx)
				if err == nil {
					err = client.HealthCheck(ctx)
				}

				if err != nil {
					fmt.Fprintf(out, "object store: unavailable (%v)\n", err)
				} else {
					fmt.Fprintf(out, "object store: ok (bucket %s)\n", client.Bucket())
				}
			}

			kind, err := backend.NewRouter(local, object, nil).Select(ctx, cfg.Storage.GetMode())
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "mode %s stores new files in: %s\n", cfg.Storage.GetMode(), kind)

			return nil
		},
	}
)

// registerStorageCommands 注册存储相关命令.
func registerStorageCommands() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageProbeCmd)
}
