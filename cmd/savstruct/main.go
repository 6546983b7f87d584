// Package main provides the CLI entry point for savstruct.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/savstruct-go/pkg/savstruct"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/output"
)

// flags holds the command line options.
type flags struct {
	columns     []string
	head        int
	tail        int
	raw         bool
	describe    bool
	jsonPath    string
	xlsxPath    string
	parquetPath string
	pretty      bool
	encoding    string
	envFile     string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	fl := &flags{}

	rootCmd := &cobra.Command{
		Use:   "savstruct [input.sav]",
		Short: "Show SPSS .sav files with their display formats",
		Long: `savstruct loads an SPSS system file and prints its columns using the
variable formats and value labels stored in the file. It can also export
the data as JSON, XLSX or Parquet.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, fl, args[0])
		},
	}

	rootCmd.Flags().StringArrayVarP(&fl.columns, "column", "c", nil, "Print the report of a column (repeatable)")
	rootCmd.Flags().IntVar(&fl.head, "head", 0, "Show the first N rows of each column report")
	rootCmd.Flags().IntVar(&fl.tail, "tail", 0, "Show the last N rows of each column report")
	rootCmd.Flags().BoolVar(&fl.raw, "raw", false, "Show raw values instead of value labels")
	rootCmd.Flags().BoolVar(&fl.describe, "describe", false, "Append summaries of numeric columns")
	rootCmd.Flags().StringVar(&fl.jsonPath, "json", "", "Write the dictionary and cases as JSON")
	rootCmd.Flags().StringVar(&fl.xlsxPath, "xlsx", "", "Write an XLSX workbook")
	rootCmd.Flags().StringVar(&fl.parquetPath, "parquet", "", "Write a Parquet file")
	rootCmd.Flags().BoolVar(&fl.pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&fl.encoding, "encoding", "", "Override the character set declared in the file")
	rootCmd.Flags().StringVar(&fl.envFile, "env-file", ".env", "File with SAVSTRUCT_* defaults")
	rootCmd.Flags().BoolVarP(&fl.verbose, "verbose", "v", false, "Log progress to stderr")

	return rootCmd
}

func run(cmd *cobra.Command, fl *flags, inputPath string) error {
	logger := log.New(io.Discard, "", 0)
	if fl.verbose {
		logger = log.New(cmd.ErrOrStderr(), "savstruct: ", log.LstdFlags)
	}

	if cmd.Flags().Changed("head") && cmd.Flags().Changed("tail") {
		return errors.New("--head and --tail are mutually exclusive")
	}

	if err := loadEnvFile(fl.envFile); err != nil {
		return err
	}
	env, err := readEnv()
	if err != nil {
		return err
	}

	opts := savstruct.DefaultOptions()
	opts.ValueLabels = env.ValueLabels
	if env.PreviewRows > 0 {
		opts.PreviewRows = env.PreviewRows
	}
	opts.Encoding = env.Encoding
	if cmd.Flags().Changed("raw") {
		labels := !fl.raw
		opts.ValueLabels = &labels
	}
	if fl.encoding != "" {
		opts.Encoding = fl.encoding
	}

	logger.Printf("loading %s", inputPath)
	f, err := savstruct.Load(inputPath, opts)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	logger.Printf("loaded %d cases, %d columns", f.RowCount(), f.ColCount())

	out := cmd.OutOrStdout()

	exporting := fl.jsonPath != "" || fl.xlsxPath != "" || fl.parquetPath != ""
	switch {
	case len(fl.columns) > 0:
		if err := printColumns(out, f, fl, cmd.Flags().Changed("tail"), opts.ShouldUseValueLabels()); err != nil {
			return err
		}
	case !exporting || fl.describe:
		s, err := f.Display()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	}

	if fl.describe {
		printSummaries(out, f)
	}

	return export(f, fl, opts.ShouldUseValueLabels(), logger)
}

func printColumns(out io.Writer, f *savstruct.File, fl *flags, tail, valueLabels bool) error {
	display := savstruct.DisplayOptions{ValueLabels: valueLabels}
	switch {
	case tail:
		display.Rows = savstruct.Tail(fl.tail)
	case fl.head > 0:
		display.Rows = savstruct.Head(fl.head)
	}

	reports := make([]string, 0, len(fl.columns))
	for _, name := range fl.columns {
		c, ok := f.Column(name)
		if !ok {
			return fmt.Errorf("no column %q", name)
		}
		s, err := c.Display(display)
		if err != nil {
			return err
		}
		reports = append(reports, s)
	}

	fmt.Fprintln(out, strings.Join(reports, "\n\n"))
	return nil
}

func printSummaries(out io.Writer, f *savstruct.File) {
	for c := range f.Cols() {
		s, err := c.Describe()
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", s)
	}
}

// export writes the requested files concurrently.
func export(f *savstruct.File, fl *flags, valueLabels bool, logger *log.Logger) error {
	var eg errgroup.Group

	if fl.jsonPath != "" {
		eg.Go(func() error {
			data, err := output.ToJSON(f, fl.pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if err := os.WriteFile(fl.jsonPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			logger.Printf("wrote %s", fl.jsonPath)
			return nil
		})
	}

	if fl.xlsxPath != "" {
		eg.Go(func() error {
			if err := output.WriteXLSX(f, fl.xlsxPath, valueLabels); err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}
			logger.Printf("wrote %s", fl.xlsxPath)
			return nil
		})
	}

	if fl.parquetPath != "" {
		eg.Go(func() error {
			if err := output.WriteParquet(f, fl.parquetPath); err != nil {
				return fmt.Errorf("failed to write parquet: %w", err)
			}
			logger.Printf("wrote %s", fl.parquetPath)
			return nil
		})
	}

	return eg.Wait()
}
