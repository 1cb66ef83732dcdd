package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/multiaccess-studios/proxyprint/internal/manifest"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <manifest.toml>",
	Short: "Check a compiled manifest for consistency",
	Long: `Verify rechecks a compiled manifest: printing ids must be unique, remaps must
point at existing printings, and local image overrides must reference real
cards. Useful after editing a manifest by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := args[0]

		if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
			return fmt.Errorf("manifest not found: %s", manifestPath)
		}

		m, err := manifest.ReadWithOverlay(manifestPath)
		if err != nil {
			return err
		}

		results := manifest.NewVerifier(m).Verify()

		if len(results.Errors) == 0 {
			fmt.Println(color.GreenString("manifest %s is consistent", manifestPath))
		} else {
			fmt.Println(color.RedString("manifest %s has %d errors:", manifestPath, len(results.Errors)))
			for i, e := range results.Errors {
				fmt.Printf("%d. %s\n", i+1, e)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for i, w := range results.Warnings {
				fmt.Printf("%d. %s\n", i+1, w)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("verification failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)
}
