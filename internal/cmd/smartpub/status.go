package smartpub

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <address>",
		Short: "Show a paper's metadata, review state, and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(cmd)
			address := args[0]

			record, err := client.GetPaper(cmd.Context(), address)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", record.Title)
			fmt.Fprintf(out, "  address: %s\n", record.Address)
			fmt.Fprintf(out, "  owner: %s\n", record.Owner)
			fmt.Fprintf(out, "  state: %s (%d review rounds)\n", record.State, record.ReviewCount)
			for index, file := range record.Files {
				fmt.Fprintf(out, "  file %d: %s %s=%s\n", index, file.PublicLocation, file.HashAlgorithm, file.Hash)
			}

			history, err := client.ListTransitions(cmd.Context(), address)
			if err != nil {
				return err
			}
			for _, entry := range history {
				fmt.Fprintf(out, "  #%d %s -> %s (%s by %s)\n",
					entry.Seq, entry.OldState, entry.NewState, entry.Action, entry.Actor)
			}
			return nil
		},
	}
}

func newMyWorkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "my-work",
		Short: "List papers created by this identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, _ := cmd.Flags().GetString("identity")
			addresses, err := newClient(cmd).PapersByCreator(cmd.Context(), identity)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(addresses) == 0 {
				fmt.Fprintln(out, "no papers")
				return nil
			}
			for _, address := range addresses {
				fmt.Fprintln(out, address)
			}
			return nil
		},
	}
}

func newAssetsCommand() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "assets <workflow-id>",
		Short: "List workflow assets in a given state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := newClient(cmd).AssetsByState(cmd.Context(), args[0], state)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(addresses) == 0 {
				fmt.Fprintln(out, "no assets")
				return nil
			}
			for _, address := range addresses {
				fmt.Fprintln(out, address)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "SUBMITTED", "workflow state to filter by")
	return cmd
}
