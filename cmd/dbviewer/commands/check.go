package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dbviewer/internal/content"
)

func checkCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Print the content list with the kind of each item",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			src := &content.FileSource{Path: cfg.ContentFile}
			items, err := src.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d items, %s each\n", cfg.ContentFile, len(items), cfg.Delay)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, raw := range items {
				item := content.Classify(raw)
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, item.Kind, oneLine(item.Raw, 100))
			}
			return tw.Flush()
		},
	}
}
