package main

import "github.com/spf13/cobra"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "seatctl",
		Short:         "Offline exam seating tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAllocateCommand())
	return root
}
