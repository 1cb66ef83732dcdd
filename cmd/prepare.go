package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/multiaccess-studios/proxyprint/internal/manifest"
)

var (
	prepareLocalManifest string
	prepareLocalOutput   string
)

// prepareCmd represents the prepare command
var prepareCmd = &cobra.Command{
	Use:   "prepare <dataset-dir> <manifest.toml> <output.toml>",
	Short: "Compile a card manifest from a dataset and override file",
	Long: `Prepare reconciles the card dataset with the manual overrides in the manifest
file and writes a fully expanded, deterministic manifest. A <manifest>.local.toml
sibling, when present, is compiled into a separate local-only overlay.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetDir := args[0]
		manifestPath := args[1]
		outputPath := args[2]

		if _, err := os.Stat(datasetDir); os.IsNotExist(err) {
			return fmt.Errorf("dataset directory not found: %s", datasetDir)
		}

		result, err := manifest.Compile(manifest.Options{
			DatasetDir:        datasetDir,
			ManifestPath:      manifestPath,
			LocalManifestPath: prepareLocalManifest,
			Warn: func(format string, a ...any) {
				fmt.Fprintln(os.Stderr, color.YellowString("warning: "+format, a...))
			},
		})
		if err != nil {
			return err
		}

		if err := manifest.WriteFile(result.Primary, outputPath); err != nil {
			return err
		}

		cards, printings := countRecords(result.Primary)
		fmt.Printf("%s %s (%d groups, %d cards, %d printings)\n",
			color.GreenString("wrote"), outputPath,
			len(result.Primary.Groups), cards, printings)

		if result.Overlay != nil {
			localOut := prepareLocalOutput
			if localOut == "" {
				localOut = manifest.DefaultOverlayPath
			}
			if err := manifest.WriteFile(result.Overlay, localOut); err != nil {
				return err
			}
			cards, printings = countRecords(result.Overlay)
			fmt.Printf("%s %s (%d cards, %d printings, local only)\n",
				color.GreenString("wrote"), localOut, cards, printings)
		}

		return nil
	},
}

func countRecords(m *manifest.Manifest) (cards, printings int) {
	for _, g := range m.Groups {
		cards += len(g.Cards)
		for _, c := range g.Cards {
			printings += len(c.Printings)
		}
	}
	return cards, printings
}

func init() {
	prepareCmd.Flags().StringVar(&prepareLocalManifest, "local-manifest", "",
		"local override file (default: <manifest>.local.toml when present)")
	prepareCmd.Flags().StringVar(&prepareLocalOutput, "local-output", "",
		"where to write the local overlay (default: "+manifest.DefaultOverlayPath+")")
	RootCmd.AddCommand(prepareCmd)
}
