package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/locate"
)

var locateParams struct {
	kind string
}

var locateCmd = &cobra.Command{
	Use:   "locate <image> --kind exif|xmp|iptc",
	Short: "Print one metadata subtree of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := core.Kind(locateParams.kind)
		switch kind {
		case core.KindEXIF, core.KindXMP, core.KindIPTC:
		default:
			return fmt.Errorf("unknown metadata kind %q", locateParams.kind)
		}

		svc := newServices(cmd.OutOrStdout())
		md, format, err := svc.codec.DecodeFile(args[0])
		if err != nil {
			return err
		}
		n, ok := locate.Find(md, format, kind, svc.tc)
		if !ok {
			svc.printer.PrintNotFound()
			return nil
		}
		svc.printer.PrintTree(args[0]+" "+string(kind), format, n)
		return nil
	},
}

func init() {
	locateCmd.Flags().StringVar(&locateParams.kind, flagKind, string(core.KindXMP), "metadata kind")
	rootCmd.AddCommand(locateCmd)
}
