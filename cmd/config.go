package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/genexpr-cli/internal/config"
	"github.com/KaramelBytes/genexpr-cli/internal/logger"
	"github.com/KaramelBytes/genexpr-cli/internal/report"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set genexpr configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "format: %s\n", c.Format)
		fmt.Fprintf(out, "hcc_label: %s\n", c.HCCLabel)
		fmt.Fprintf(out, "normal_label: %s\n", c.NormalLabel)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", c.SheetIndex)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "format":
			f, err := report.ParseFormat(val)
			if err != nil {
				return inputErrorf("invalid format: %s (use text or markdown)", val)
			}
			cfg.Format = string(f)
		case "hcc_label":
			if strings.TrimSpace(val) == "" {
				return inputErrorf("hcc_label must not be empty")
			}
			cfg.HCCLabel = strings.TrimSpace(val)
		case "normal_label":
			if strings.TrimSpace(val) == "" {
				return inputErrorf("normal_label must not be empty")
			}
			cfg.NormalLabel = strings.TrimSpace(val)
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return inputErrorf("invalid delimiter: %q (use ',' ';' or 'tab')", val)
			}
			cfg.Delimiter = val
		case "sheet_name":
			cfg.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return inputErrorf("invalid int for sheet_index: %v", val)
			}
			cfg.SheetIndex = i
		case "log_level":
			if _, err := logger.ParseLevel(val); err != nil {
				return inputErrorf("%v", err)
			}
			cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
		default:
			return inputErrorf("unknown key: %s", key)
		}
		if cfg.HCCLabel == cfg.NormalLabel {
			return inputErrorf("hcc_label and normal_label must differ")
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
