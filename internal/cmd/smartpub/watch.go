package smartpub

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartpublish/registry/pkg/sdk"
)

func newWatchCommand() *cobra.Command {
	var afterSeq uint64
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the registry's event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return newClient(cmd).Watch(cmd.Context(), afterSeq, func(evt sdk.Event) error {
				fmt.Fprintf(out, "#%d %s %s %s\n", evt.Seq, evt.Timestamp.Format("15:04:05"), evt.Type, evt.EntityID)
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&afterSeq, "after-seq", 0, "replay events after this sequence number")
	return cmd
}
