package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/multiaccess-studios/proxyprint/internal/assets"
	"github.com/multiaccess-studios/proxyprint/internal/config"
	"github.com/multiaccess-studios/proxyprint/internal/layout"
	"github.com/multiaccess-studios/proxyprint/internal/manifest"
	"github.com/multiaccess-studios/proxyprint/internal/sheet"
)

var (
	sheetPaper     string
	sheetBleed     string
	sheetCut       string
	sheetRows      int
	sheetColumns   int
	sheetImageRoot string
	sheetParallel  int
	sheetVerbose   bool
)

// sheetCmd represents the sheet command
var sheetCmd = &cobra.Command{
	Use:   "sheet <manifest.toml> <decklist.txt> <output.pdf>",
	Short: "Print a decklist as a PDF of proxy sheets",
	Long: `Sheet selects cards from a compiled manifest using a decklist of
"<count> <name>" lines, fetches their images, and writes a multi-page PDF
laid out for printing and cutting.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := args[0]
		decklistPath := args[1]
		outputPath := args[2]

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("paper") && cfg.Paper != "" {
			sheetPaper = cfg.Paper
		}
		if !cmd.Flags().Changed("bleed") && cfg.Bleed != "" {
			sheetBleed = cfg.Bleed
		}
		if !cmd.Flags().Changed("cut") && cfg.Cut != "" {
			sheetCut = cfg.Cut
		}
		if !cmd.Flags().Changed("image-root") && cfg.ImageRoot != "" {
			sheetImageRoot = cfg.ImageRoot
		}
		if !cmd.Flags().Changed("parallel") && cfg.Parallel > 0 {
			sheetParallel = cfg.Parallel
		}

		geom := layout.Default()
		if geom.Paper, err = layout.ParsePaper(sheetPaper); err != nil {
			return err
		}
		if geom.Bleed, err = layout.ParseBleed(sheetBleed); err != nil {
			return err
		}
		if geom.Cut, err = layout.ParseCutStyle(sheetCut); err != nil {
			return err
		}
		if sheetRows > 0 {
			geom.Rows = sheetRows
		}
		if sheetColumns > 0 {
			geom.Columns = sheetColumns
		}
		if err := geom.Validate(); err != nil {
			return err
		}

		log, err := newLogger(sheetVerbose)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m, err := manifest.ReadWithOverlay(manifestPath)
		if err != nil {
			return err
		}

		decklist, err := os.Open(decklistPath)
		if err != nil {
			return err
		}
		reqs, err := sheet.ParseDecklist(decklist)
		decklist.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", decklistPath, err)
		}

		resolver := assets.NewResolver(m, sheetImageRoot)
		items, err := sheet.Select(m, resolver, reqs)
		if err != nil {
			return err
		}

		fetcher := sheet.NewFetcher(log)
		if sheetParallel > 0 {
			fetcher.Parallel = sheetParallel
		}
		images, fetchErrs, err := fetcher.Fetch(ctx, items)
		if err != nil {
			return err
		}

		emitter := sheet.NewEmitter(geom, log)
		if err := emitter.Emit(ctx, outputPath, items, images, fetchErrs); err != nil {
			return err
		}

		missing := 0
		for _, ferr := range fetchErrs {
			if ferr != nil {
				missing++
			}
		}
		if missing > 0 {
			fmt.Println(color.YellowString("wrote %s (%d cards, %d placeholders)",
				outputPath, len(items), missing))
		} else {
			fmt.Printf("%s %s (%d cards)\n", color.GreenString("wrote"), outputPath, len(items))
		}

		return nil
	},
}

// newLogger picks a console encoder on a terminal and JSON otherwise, so
// piped output stays machine readable.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}

func init() {
	sheetCmd.Flags().StringVar(&sheetPaper, "paper", "a4", "paper size (a4, letter)")
	sheetCmd.Flags().StringVar(&sheetBleed, "bleed", "none", "bleed margin (none, narrow, medium, wide)")
	sheetCmd.Flags().StringVar(&sheetCut, "cut", "lines", "trim guides (lines, marks, none)")
	sheetCmd.Flags().IntVar(&sheetRows, "rows", 0, "rows per page (default 3)")
	sheetCmd.Flags().IntVar(&sheetColumns, "columns", 0, "columns per page (default 3)")
	sheetCmd.Flags().StringVar(&sheetImageRoot, "image-root", "", "base URL for card images")
	sheetCmd.Flags().IntVar(&sheetParallel, "parallel", 0, "concurrent image fetches (default: CPU count)")
	sheetCmd.Flags().BoolVarP(&sheetVerbose, "verbose", "v", false, "verbose logging")
	RootCmd.AddCommand(sheetCmd)
}
