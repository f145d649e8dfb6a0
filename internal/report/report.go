// Package report renders a merge run as a Markdown document.
package report

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/datamap"
	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
)

// Write renders result as Markdown to w.
func Write(w io.Writer, result *datamap.Result) error {
	if result == nil || result.Report == nil {
		return errors.NewValidationError("result", nil, "result is required")
	}

	doc := md.NewMarkdown(w)
	doc.H1("Catalog merge report")
	doc.PlainTextf("Run %s started %s and took %s.",
		md.Code(result.RunID),
		result.StartedAt.RFC3339(),
		result.Duration.Round(time.Millisecond))
	doc.LF()

	doc.H2("Sources")
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
	rows = append(rows, []string{md.Bold("Total"), "", strconv.Itoa(result.SourceTotal()), "", ""})
	doc.Table(md.TableSet{
		Header: []string{"Source", "Origin", "Records", "Files read", "Files skipped"},
		Rows:   rows,
	})

	doc.H2("Cleaning")
	rep := result.Report
	doc.BulletList(
		fmt.Sprintf("Owners renamed: %d", rep.OwnersRenamed),
		fmt.Sprintf("Owners without an alias: %d", rep.OwnersUnmapped),
		fmt.Sprintf("Records without a valid update date: %d", rep.DatesNull),
		fmt.Sprintf("Uncategorised records: %d", rep.Uncategorised),
		fmt.Sprintf("Records without a licence: %d", rep.NoLicence),
		fmt.Sprintf("Records with a custom licence: %d", rep.CustomLicence),
	)

	doc.H2("Categories")
	doc.Table(distribution("Category", result.Categories))

	doc.H2("Licences")
	doc.Table(distribution("Licence", result.Licences))

	return doc.Build()
}

// Save writes the report for result to path.
func Save(path string, result *datamap.Result) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := Write(f, result); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// distribution renders counts sorted by count, largest first, then by name.
func distribution(label string, counts map[string]int) md.TableSet {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(counts[name])}
	}
	return md.TableSet{Header: []string{label, "Records"}, Rows: rows}
}
