package main

import (
	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/locate"
)

var xmpCmd = &cobra.Command{
	Use:   "xmp <image>",
	Short: "Print the raw XMP packet of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices(cmd.OutOrStdout())
		md, format, err := svc.codec.DecodeFile(args[0])
		if err != nil {
			return err
		}
		if format == core.FmtPNG {
			svc.printer.PrintPacket(locate.PNGPacket(md))
			return nil
		}
		x, ok := locate.Xmp(md, format, svc.tc)
		if !ok {
			svc.printer.PrintNotFound()
			return nil
		}
		svc.printer.PrintPacket(svc.tc.Packet(x))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(xmpCmd)
}
