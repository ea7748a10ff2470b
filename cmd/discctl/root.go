package main

import (
	"github.com/spf13/cobra"
)

const defaultAddr = "http://127.0.0.1:7391"

func newRootCommand() *cobra.Command {
	var addrFlag string
	var jsonFlag bool

	rootCmd := &cobra.Command{
		Use:           "discctl",
		Short:         "Control the discd audio CD daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", defaultAddr, "Address of the discd API")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit raw JSON instead of tables")

	rootCmd.AddCommand(newStatusCommand(&addrFlag, &jsonFlag))
	rootCmd.AddCommand(newInfoCommand(&addrFlag, &jsonFlag))
	rootCmd.AddCommand(newPlayCommand(&addrFlag))
	rootCmd.AddCommand(newStopCommand(&addrFlag, &jsonFlag))
	rootCmd.AddCommand(newEjectCommand(&addrFlag, &jsonFlag))
	rootCmd.AddCommand(newNameCommand(&addrFlag, &jsonFlag))

	return rootCmd
}
