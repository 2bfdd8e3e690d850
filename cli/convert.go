package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ankit-chaubey/media-metadata-convert/core"
)

var convertParams struct {
	from string
	to   string
}

var convertCmd = &cobra.Command{
	Use:   "convert <image> --to <format>",
	Short: "Show the metadata of an image relocated for another container",
	Long: `Decodes the metadata of an image and rebuilds its EXIF, XMP and IPTC parts
under the paths the destination container uses. Destination formats: tiff, jpg,
png, wmphoto. The result is printed; the image itself is not modified.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to := core.ParseFormat(convertParams.to)
		if to == core.FmtUnknown && convertParams.to != "" {
			return fmt.Errorf("unknown destination format %q", convertParams.to)
		}

		svc := newServices(cmd.OutOrStdout())
		md, detected, err := svc.codec.DecodeFile(args[0])
		if err != nil {
			return err
		}
		from := detected
		if convertParams.from != "" {
			from = core.ParseFormat(convertParams.from)
		}
		log.Debug("converting", zap.String("file", args[0]),
			zap.String("from", string(from)), zap.String("to", string(to)))

		out, err := svc.converter.Convert(md, from, to)
		if err != nil {
			return err
		}
		svc.printer.PrintTree(args[0]+" -> "+string(to), to, out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertParams.from, flagFrom, "", "source format, detected when empty")
	convertCmd.Flags().StringVar(&convertParams.to, flagTo, "", "destination format")
	_ = convertCmd.MarkFlagRequired(flagTo)
	rootCmd.AddCommand(convertCmd)
}
