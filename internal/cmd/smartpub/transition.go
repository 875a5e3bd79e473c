package smartpub

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTransitionCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "transition <address> <review|accept|reject>",
		Short:     "Perform a workflow action on a paper",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"review", "accept", "reject"},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient(cmd).ApplyTransition(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (seq %d)\n",
				result.Transition.OldState, result.Transition.NewState, result.Transition.Seq)
			return nil
		},
	}
}

func newGrantCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <workflow-id> <identity> <reviewer|decision-maker|admin>",
		Short: "Grant a workflow role to an identity (admin only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient(cmd).AssignRole(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s to %s\n", args[2], args[1])
			return nil
		},
	}
}
