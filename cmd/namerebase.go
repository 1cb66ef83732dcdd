package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/multiaccess-studios/proxyprint/internal/namerebase"
)

// namerebaseCmd represents the namerebase command
var namerebaseCmd = &cobra.Command{
	Use:   "namerebase <dir> <ext> <offset>",
	Short: "Renumber id-named asset files by a fixed offset",
	Long: `Namerebase renames files like 12.webp or 12.2.webp in a directory, adding the
offset to the leading number. Handy when slotting a batch of rendered images
into a new printing id range.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		ext := args[1]
		offset, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad offset %q", args[2])
		}

		moved, err := namerebase.Rebase(dir, ext, offset)
		if err != nil {
			return err
		}

		fmt.Printf("%s %d files in %s\n", color.GreenString("renamed"), moved, dir)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(namerebaseCmd)
}
