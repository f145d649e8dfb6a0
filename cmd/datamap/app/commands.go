package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/agentstation/utc"
	"github.com/spf13/cobra"

	"github.com/agentstation/datamap"
	"github.com/agentstation/datamap/internal/harvest"
	"github.com/agentstation/datamap/internal/output"
	"github.com/agentstation/datamap/internal/report"
	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
)

// NewMergeCommand creates the merge command.
func (a *App) NewMergeCommand() *cobra.Command {
	var (
		cfg        PipelineConfig
		reportFile string
	)

	cmd := &cobra.Command{
		Use:     "merge",
		GroupID: "core",
		Short:   "Merge, clean and classify every catalog source",
		Long: `Merge reads the six catalog sources under the data directory in priority
order, writes the raw merge to merged_output_untidy.csv and the cleaned
catalog to merged_output.csv.

A missing or malformed source aborts the run before anything is written.`,
		Example: `  datamap merge
  datamap merge --data-dir ./data --out-dir ./out
  datamap merge --sqlite catalog.db --report report.md -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.DataDir = firstNonEmpty(cfg.DataDir, a.config.DataDir, constants.DefaultDataDir)
			cfg.OutDir = firstNonEmpty(cfg.OutDir, a.config.OutDir)
			cfg.TablesFile = firstNonEmpty(cfg.TablesFile, a.config.TablesFile)
			cfg.SQLitePath = firstNonEmpty(cfg.SQLitePath, a.config.SQLitePath)
			reportFile = firstNonEmpty(reportFile, a.config.ReportFile)

			pipeline, err := a.Pipeline(cfg)
			if err != nil {
				return err
			}

			result, err := pipeline.Run(cmd.Context())
			if errors.IsNotFound(err) {
				return fmt.Errorf("%w (data directory is %s; set --data-dir or data_dir)", err, cfg.DataDir)
			}
			if err != nil {
				return err
			}

			if reportFile != "" {
				if err := report.Save(reportFile, result); err != nil {
					return err
				}
				logging.FromContext(cmd.Context()).Info().Str("path", reportFile).Msg("Wrote run report")
			}

			if !a.tableFormat() {
				return a.print(cmd, result)
			}
			if err := a.print(cmd, resultTable(result)); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.DataDir, "data-dir", "", "directory holding the source files (default \"data\")")
	cmd.Flags().StringVar(&cfg.OutDir, "out-dir", "", "directory the CSV snapshots are written to (default is the data directory)")
	cmd.Flags().StringVar(&cfg.TablesFile, "tables", "", "YAML file replacing the built-in taxonomy, owner and licence tables")
	cmd.Flags().StringVar(&cfg.SQLitePath, "sqlite", "", "also write both snapshots into this SQLite database")
	cmd.Flags().StringVar(&reportFile, "report", "", "write a Markdown run report to this file")

	return cmd
}

func resultTable(result *datamap.Result) output.Data {
	rows := make([][]string, 0, len(result.Sources)+1)
	for _, s := range result.Sources {
		rows = append(rows, []string{
			string(s.Source),
			s.Source.Label(),
			strconv.Itoa(s.Records),
			strconv.Itoa(s.FilesRead),
			strconv.Itoa(s.FilesSkipped),
		})
	}
	rows = append(rows, []string{"TOTAL", "", strconv.Itoa(result.SourceTotal()), "", ""})

	return output.Data{
		Headers: []string{"Source", "Origin", "Records", "Files", "Skipped"},
		Rows:    rows,
		ColumnAlignment: []output.Align{
			output.AlignLeft, output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight,
		},
	}
}

// harvestOutput describes a finished harvest.
type harvestOutput struct {
	URL   string `json:"url" yaml:"url"`
	Items int    `json:"items" yaml:"items"`
	Path  string `json:"path" yaml:"path"`
}

// NewHarvestCommand creates the harvest command.
func (a *App) NewHarvestCommand() *cobra.Command {
	var (
		url    string
		outDir string
		prefix string
	)

	cmd := &cobra.Command{
		Use:     "harvest",
		GroupID: "core",
		Short:   "Harvest a paginated catalog API into a harvested-source directory",
		Long: `Harvest follows the next links of a paginated catalog search API and writes
every dataset it returns as one timestamped CSV file in the input layout the
merge command reads.

By default the file lands in the arcgis directory under the data directory.`,
		Example: `  datamap harvest
  datamap harvest --url "https://hub.example.org/api/search/v1/collections/dataset/items" --out data/arcgis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url = firstNonEmpty(url, a.config.HarvestURL, harvest.DefaultURL)
			dataDir := firstNonEmpty(a.config.DataDir, constants.DefaultDataDir)
			outDir = firstNonEmpty(outDir, filepath.Join(dataDir, constants.HarvestedADir))

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			items, err := harvest.NewClient().Harvest(ctx, url)
			if errors.IsUnavailable(err) {
				logging.FromContext(ctx).Warn().Err(err).Str("url", url).
					Msg("Catalog API unavailable, nothing was written; retry later")
			}
			if err != nil {
				return err
			}

			path, err := harvest.Save(ctx, outDir, harvest.FileName(prefix, utc.Now()), items)
			if err != nil {
				return err
			}

			out := harvestOutput{URL: url, Items: len(items), Path: path}
			if !a.tableFormat() {
				return a.print(cmd, out)
			}
			return a.print(cmd, output.Data{
				Headers: []string{"Items", "File"},
				Rows:    [][]string{{strconv.Itoa(out.Items), out.Path}},
			})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "first page of the catalog search API (default is the configured harvest URL)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write the CSV file to (default is <data-dir>/arcgis)")
	cmd.Flags().StringVar(&prefix, "name", "arcgis", "file name prefix")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
