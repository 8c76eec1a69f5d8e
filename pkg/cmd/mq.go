package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	mq "github.com/yeisme/filevault/pkg/internal/storage/mq"
	"github.com/yeisme/filevault/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "inspect the file event bus",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list registered mq backends",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")

			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	mqTopicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "list file event topics",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, t := range queue.FileTopics {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	}

	mqTailCmd = &cobra.Command{
		Use:     "tail [topic]...",
		Short:   "print file events as they arrive, all file topics by default",
		PreRunE: loadConfig,
		RunE:    runMQTail,
	}
)

func runMQTail(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mq.New(ctx, configs.GetConfig().MQ)
	if err != nil {
		return err
	}

	if client == nil {
		return fmt.Errorf("mq is disabled (mq.type=none)")
	}
	defer client.Close()

	topics := args
	if len(topics) == 0 {
		topics = queue.FileTopics
	}

	var out sync.Mutex

	for _, topic := range topics {
		ch, err := client.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		go func() {
			for msg := range ch {
				out.Lock()
				printEvent(cmd.OutOrStdout(), topic, msg)
				out.Unlock()

				msg.Ack()
			}
		}()
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "tailing %d topic(s) on %s, Ctrl+C to stop\n", len(topics), client.Type())

	<-ctx.Done()

	return nil
}

func printEvent(w io.Writer, topic string, msg *message.Message) {
	ev, err := queue.ParseWatermillMessage[map[string]any](msg)
	if err != nil {
		fmt.Fprintf(w, "%s\t%s\tundecodable: %v\n", topic, msg.UUID, err)
		return
	}

	payload, _ := sonic.MarshalString(ev.Payload)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		ev.Header.OccurredAt.Format("2006-01-02T15:04:05.000Z07:00"), topic, msg.UUID, payload)
}

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	mqCmd.AddCommand(mqListCmd, mqTopicsCmd, mqTailCmd)
	rootCmd.AddCommand(mqCmd)
}
