package main

import (
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view <image>",
	Short: "Print the metadata tree of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices(cmd.OutOrStdout())
		md, format, err := svc.codec.DecodeFile(args[0])
		if err != nil {
			return err
		}
		svc.printer.PrintTree(args[0], format, md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
