package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/genexpr-cli/internal/dataset"
	"github.com/KaramelBytes/genexpr-cli/internal/logger"
	"github.com/KaramelBytes/genexpr-cli/internal/report"
	"github.com/KaramelBytes/genexpr-cli/internal/stats"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	repFormat string

	// Dataset flags shared by report and list
	dsDelimiter   string
	dsSheetName   string
	dsSheetIndex  int
	dsHCCLabel    string
	dsNormalLabel string
)

// reportArgs are the validated positional arguments of the report command.
type reportArgs struct {
	input     string
	dest      string
	genes     []string
	threshold float64
	topN      int
}

// section is one block of the report.
type section struct {
	title  string
	data   any
	footer string
}

var reportCmd = &cobra.Command{
	Use:   "report <input> <screen|file_path> [<output-file>] <gene,gene,...> <threshold> <top-n>",
	Short: "Compute per-gene expression statistics and write the report",
	Long: `Compute per-gene expression statistics and write them as a report.

The output choice is "screen" (standard output) or "file_path", in which case the
next argument is the report file; it is overwritten. Statistics are computed for
the comma-separated genes; <threshold> filters expression values and <top-n> limits
the most differential genes. Numeric arguments are always positional, so a
negative threshold or count is rejected as invalid input rather than read as a flag.`,
	Example: `  genexpr report liver.csv screen TP53,MYC 5.0 10
  genexpr report liver.csv file_path out/report.txt TP53 0 3 --format markdown`,
	Args: cobra.ArbitraryArgs,
	// Flags are parsed in RunE so that tokens like "-1" stay positional.
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		positional, err := parseMixedArgs(cmd, args)
		if err != nil {
			return err
		}
		if help, _ := cmd.Flags().GetBool("help"); help {
			return cmd.Help()
		}
		if cmd.Flags().Changed("config") || cmd.Flags().Changed("debug") {
			loadConfig()
		}
		ra, err := parseReportArgs(positional)
		if err != nil {
			return err
		}
		opt, err := datasetOptions(cmd)
		if err != nil {
			return err
		}
		formatName := effectiveConfig().Format
		if cmd.Flags().Changed("format") {
			formatName = repFormat
		}
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return &InputError{Message: err.Error()}
		}

		runID := uuid.NewString()
		logger.Info("report started", zap.String("run", runID), zap.String("input", ra.input), zap.Strings("genes", ra.genes))

		ds, err := dataset.Load(ra.input, opt)
		if err != nil {
			logger.Error("load failed", zap.String("run", runID), zap.Error(err))
			return &stageError{stage: "load dataset", code: exitLoad, err: err}
		}
		for _, w := range ds.Warnings {
			logger.Warn(w, zap.String("dataset", ds.Name))
		}
		logger.Debug("dataset loaded", zap.String("dataset", ds.Name), zap.Int("genes", len(ds.Genes())), zap.Int("samples", len(ds.SampleIDs())))

		sections, err := buildSections(ds, ra)
		if err != nil {
			logger.Error("statistics failed", zap.String("run", runID), zap.Error(err))
			code := exitFailure
			if stats.IsStatsError(err) {
				code = exitStats
			}
			return &stageError{stage: "statistics", code: code, err: err}
		}

		w, err := report.Open(ra.dest, format, cmd.OutOrStdout())
		if err != nil {
			return &stageError{stage: "open report", code: exitWrite, err: err}
		}
		if err := writeSections(w, ds.Name, runID, sections); err != nil {
			return &stageError{stage: "write report", code: exitWrite, err: err}
		}
		if w.Path() != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", w.Path())
		}
		logger.Info("report finished", zap.String("run", runID), zap.Int("sections", len(sections)))
		return nil
	},
}

func writeSections(w *report.Writer, name, runID string, sections []section) error {
	if err := w.Preamble(name, runID); err != nil {
		return err
	}
	for _, s := range sections {
		if err := w.Render(s.title, s.data, s.footer); err != nil {
			return err
		}
	}
	return w.Close()
}

// parseMixedArgs separates flags from positional arguments and parses the
// flags onto cmd. Anything that parses as a number is positional, as is
// everything after "--".
func parseMixedArgs(cmd *cobra.Command, args []string) ([]string, error) {
	var positional, flagArgs []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case len(a) < 2 || a[0] != '-' || isNumber(a):
			positional = append(positional, a)
		default:
			flagArgs = append(flagArgs, a)
			if takesValue(cmd, a) && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		}
	}
	if err := cmd.ParseFlags(flagArgs); err != nil {
		return nil, inputErrorf("%v", err)
	}
	return positional, nil
}

// takesValue reports whether flag token a expects its value in the next argument.
func takesValue(cmd *cobra.Command, a string) bool {
	if strings.Contains(a, "=") {
		return false
	}
	var f *pflag.Flag
	if strings.HasPrefix(a, "--") {
		name := a[2:]
		if f = cmd.Flags().Lookup(name); f == nil {
			f = cmd.InheritedFlags().Lookup(name)
		}
	} else if len(a) == 2 {
		if f = cmd.Flags().ShorthandLookup(a[1:]); f == nil {
			f = cmd.InheritedFlags().ShorthandLookup(a[1:])
		}
	}
	return f != nil && f.NoOptDefVal == ""
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// parseReportArgs validates `<input> <screen|file_path> [<output-file>] <genes> <threshold> <top-n>`.
func parseReportArgs(args []string) (reportArgs, error) {
	var ra reportArgs
	if len(args) < 2 {
		return ra, inputErrorf("Missing required arguments: <input> <screen|file_path> [<output-file>] <genes> <threshold> <top-n>")
	}
	ra.input = strings.TrimSpace(args[0])
	if ra.input == "" {
		return ra, inputErrorf("Input path is required")
	}
	rest := args[2:]
	switch strings.ToLower(strings.TrimSpace(args[1])) {
	case report.Screen:
		ra.dest = report.Screen
	case "file_path":
		if len(rest) == 0 || strings.TrimSpace(rest[0]) == "" {
			return ra, inputErrorf("Output file path is required when output choice is 'file_path'")
		}
		ra.dest = strings.TrimSpace(rest[0])
		rest = rest[1:]
	default:
		return ra, inputErrorf("Output choice must be 'file_path' or 'screen'")
	}
	if len(rest) != 3 {
		return ra, inputErrorf("Expected <genes> <threshold> <top-n> after the output choice, got %d argument(s)", len(rest))
	}

	ra.genes = splitGenes(rest[0])
	if len(ra.genes) == 0 {
		return ra, inputErrorf("No gene names provided")
	}
	thr, err := strconv.ParseFloat(strings.TrimSpace(rest[1]), 64)
	if err != nil || math.IsNaN(thr) {
		return ra, inputErrorf("Threshold must be a number, got %q", rest[1])
	}
	if thr < 0 {
		return ra, inputErrorf("Threshold must be non-negative")
	}
	ra.threshold = thr
	n, err := strconv.Atoi(strings.TrimSpace(rest[2]))
	if err != nil {
		return ra, inputErrorf("Number must be an integer, got %q", rest[2])
	}
	if n <= 0 {
		return ra, inputErrorf("Number must be positive")
	}
	ra.topN = n
	return ra, nil
}

// splitGenes trims comma-separated names, drops empty ones and collapses
// duplicates keeping the first occurrence.
func splitGenes(s string) []string {
	names := lo.Map(strings.Split(s, ","), func(n string, _ int) string { return strings.TrimSpace(n) })
	return lo.Uniq(lo.Compact(names))
}

// buildSections computes every metric before anything is rendered, so a
// failing metric leaves no partial report behind.
func buildSections(ds *dataset.Dataset, ra reportArgs) ([]section, error) {
	mean, err := stats.Mean(ds, ra.genes)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(ds, ra.genes)
	if err != nil {
		return nil, err
	}
	variance, stdDev, err := stats.Variance(ds, ra.genes)
	if err != nil {
		return nil, err
	}
	meanHCC, err := stats.MeanHCC(ds, ra.genes)
	if err != nil {
		return nil, err
	}
	meanNormal, err := stats.MeanNormal(ds, ra.genes)
	if err != nil {
		return nil, err
	}
	diff, err := stats.Differential(ds, ra.genes)
	if err != nil {
		return nil, err
	}
	top, err := stats.TopDifferential(ds, ds.Genes(), ra.topN)
	if err != nil {
		return nil, err
	}
	above, err := stats.AboveThreshold(ds, ra.threshold)
	if err != nil {
		return nil, err
	}
	minimum, maximum, err := stats.SampleMinMax(ds)
	if err != nil {
		return nil, err
	}
	logger.Debug("statistics computed", zap.Int("genes", len(ra.genes)), zap.Int("top", top.Len()), zap.Int("above_threshold", above.Len()))

	return []section{
		{"List of all sample names:", report.Names(ds.SampleIDs()), "End of sample names list"},
		{"List of all gene names:", report.Names(ds.Genes()), "End of gene names list"},
		{"Mean dictionary of desired genes:", mean, "End of mean of desired genes"},
		{"Median dictionary of desired genes:", median, "End of median of desired genes"},
		{"Variance dictionary of desired genes:", variance, "End of variance of desired genes"},
		{"Standard deviation of desired genes:", stdDev, "End of standard deviation of desired genes"},
		{"HCC mean of desired genes:", meanHCC, "End of HCC mean of desired genes"},
		{"Normal mean of desired genes:", meanNormal, "End of normal mean of desired genes"},
		{"Ratio differential of desired genes:", diff, "End of differential ratios of desired genes"},
		{"Gene names with most expression differential:", top, "End of most differential genes"},
		{"Gene expressions above the threshold:", above, "End of genes above threshold"},
		{"Minimum expression list for each sample:", minimum, "End of minimum expressions"},
		{"Maximum expression list for each sample:", maximum, "End of maximum expressions"},
	}, nil
}

// addDatasetFlags registers the input parsing flags on cmd.
func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dsDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from extension)")
	cmd.Flags().StringVar(&dsSheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&dsSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().StringVar(&dsHCCLabel, "hcc-label", "", "type value marking HCC samples (default from config, \"HCC\")")
	cmd.Flags().StringVar(&dsNormalLabel, "normal-label", "", "type value marking normal samples (default from config, \"normal\")")
}

// datasetOptions merges config values with the dataset flags set on cmd.
func datasetOptions(cmd *cobra.Command) (dataset.Options, error) {
	c := effectiveConfig()
	opt := dataset.DefaultOptions()
	if c.HCCLabel != "" {
		opt.HCCLabel = c.HCCLabel
	}
	if c.NormalLabel != "" {
		opt.NormalLabel = c.NormalLabel
	}
	opt.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	delim := c.Delimiter

	f := cmd.Flags()
	if f.Changed("delimiter") {
		delim = dsDelimiter
	}
	if f.Changed("sheet-name") {
		opt.SheetName = dsSheetName
	}
	if f.Changed("sheet-index") {
		opt.SheetIndex = dsSheetIndex
	}
	if f.Changed("hcc-label") && strings.TrimSpace(dsHCCLabel) != "" {
		opt.HCCLabel = strings.TrimSpace(dsHCCLabel)
	}
	if f.Changed("normal-label") && strings.TrimSpace(dsNormalLabel) != "" {
		opt.NormalLabel = strings.TrimSpace(dsNormalLabel)
	}
	if opt.HCCLabel == opt.NormalLabel {
		return opt, inputErrorf("HCC and normal labels must differ (both %q)", opt.HCCLabel)
	}
	r, err := parseDelimiter(delim)
	if err != nil {
		return opt, &InputError{Message: err.Error()}
	}
	opt.Delimiter = r
	return opt, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s", s)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&repFormat, "format", "", "report layout: text|markdown (default from config)")
	addDatasetFlags(reportCmd)
}
