package app

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/datamap/internal/output"
	"github.com/agentstation/datamap/pkg/cleaner"
	"github.com/agentstation/datamap/pkg/tables"
)

// Classification is the category assignment for one tag string.
type Classification struct {
	Tags       string   `json:"tags" yaml:"tags"`
	Terms      []string `json:"terms" yaml:"terms"`
	Categories []string `json:"categories" yaml:"categories"`
}

// NewClassifyCommand creates the classify command.
func (a *App) NewClassifyCommand() *cobra.Command {
	var tablesFile string

	cmd := &cobra.Command{
		Use:     "classify <tags>...",
		GroupID: "inspect",
		Short:   "Classify tag strings against the taxonomy",
		Long: `Classify tidies each argument the way the cleaner tidies a dataset's tags
and prints the categories it falls into.`,
		Example: `  datamap classify "Schools, Budget"
  datamap classify "road;bus stops" "nan" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.Tables(firstNonEmpty(tablesFile, a.config.TablesFile))
			if err != nil {
				return err
			}
			results := classifyAll(cleaner.NewClassifier(t.Taxonomy), args)

			if !a.tableFormat() {
				return a.print(cmd, results)
			}
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{r.Tags, strings.Join(r.Categories, ", ")}
			}
			return a.print(cmd, output.Data{
				Headers: []string{"Tags", "Categories"},
				Rows:    rows,
			})
		},
	}

	cmd.Flags().StringVar(&tablesFile, "tables", "", "YAML file replacing the built-in tables")

	return cmd
}

func classifyAll(c *cleaner.Classifier, tagStrings []string) []Classification {
	out := make([]Classification, len(tagStrings))
	for i, tags := range tagStrings {
		terms := cleaner.Terms(cleaner.Tidy(tags))
		out[i] = Classification{
			Tags:       tags,
			Terms:      terms,
			Categories: c.Categories(terms),
		}
	}
	return out
}

// NewTablesCommand creates the tables command.
func (a *App) NewTablesCommand() *cobra.Command {
	var tablesFile string

	cmd := &cobra.Command{
		Use:     "tables",
		GroupID: "inspect",
		Short:   "Show the effective taxonomy, owner and licence tables",
		Long: `Tables prints the configuration tables the cleaner would use. The YAML
output can be edited and passed back with --tables.`,
		Example: `  datamap tables -o yaml > tables.yaml
  datamap merge --tables tables.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := a.Tables(firstNonEmpty(tablesFile, a.config.TablesFile))
			if err != nil {
				return err
			}
			if !a.tableFormat() {
				return a.print(cmd, t.Document())
			}
			return a.print(cmd, taxonomyTable(t))
		},
	}

	cmd.Flags().StringVar(&tablesFile, "tables", "", "YAML file replacing the built-in tables")

	return cmd
}

func taxonomyTable(t *tables.Tables) output.Data {
	categories := t.Taxonomy.Categories()
	rows := make([][]string, 0, len(categories)+1)
	for _, c := range categories {
		rows = append(rows, []string{c.Name, strconv.Itoa(len(c.Keywords)), strings.Join(c.Keywords, ", ")})
	}
	rows = append(rows, []string{t.Taxonomy.Fallback(), "0", "(fallback)"})

	return output.Data{
		Headers:         []string{"Category", "Keywords", "Terms"},
		Rows:            rows,
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignLeft},
	}
}
