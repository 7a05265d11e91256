package coverage

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// HTMLReportFolder is created next to the combined data file.
const HTMLReportFolder = "_coverage_html"

// WriteTextReport renders the per-file coverage table.
func WriteTextReport(p *Profile, baseDir string, out io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Coverage")
	t.AppendHeader(table.Row{"Name", "Stmts", "Miss", "Cover"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Stmts", Align: text.AlignRight},
		{Name: "Miss", Align: text.AlignRight},
		{Name: "Cover", Align: text.AlignRight},
	})

	for _, path := range p.SortedPaths() {
		f := p.Files[path]
		t.AppendRow(table.Row{
			displayPath(path, baseDir),
			f.Statements,
			f.Statements - len(f.Lines),
			fmt.Sprintf("%.0f%%", f.Percent()),
		})
	}

	statements, covered := p.Totals()
	percent := 100.0
	if statements > 0 {
		percent = float64(covered) / float64(statements) * 100.0
	}
	t.AppendFooter(table.Row{
		"TOTAL", statements, statements - covered, fmt.Sprintf("%.0f%%", percent),
	})
	t.Render()
}

// WriteHTMLReport renders the profile into <dir>/_coverage_html/index.html
// and returns the report path.
func WriteHTMLReport(p *Profile, dir, baseDir string) (string, error) {
	folder := filepath.Join(dir, HTMLReportFolder)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}

	statements, covered := p.Totals()
	data := htmlReportData{TotalStatements: statements, TotalCovered: covered}
	if statements > 0 {
		data.TotalPercent = float64(covered) / float64(statements) * 100.0
	} else {
		data.TotalPercent = 100.0
	}
	for _, path := range p.SortedPaths() {
		f := p.Files[path]
		data.Files = append(data.Files, htmlFileRow{
			Name:       displayPath(path, baseDir),
			Statements: f.Statements,
			Missed:     f.Statements - len(f.Lines),
			Percent:    f.Percent(),
		})
	}

	reportPath := filepath.Join(folder, "index.html")
	out, err := os.Create(reportPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if err := htmlReportTemplate.Execute(out, data); err != nil {
		return "", err
	}
	return reportPath, nil
}

func displayPath(path, baseDir string) string {
	if baseDir == "" {
		return path
	}
	if rel, err := filepath.Rel(baseDir, path); err == nil && !filepath.IsAbs(rel) &&
		rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(rel)
	}
	return path
}

type htmlFileRow struct {
	Name       string
	Statements int
	Missed     int
	Percent    float64
}

type htmlReportData struct {
	Files           []htmlFileRow
	TotalStatements int
	TotalCovered    int
	TotalPercent    float64
}

var htmlReportTemplate = template.Must(template.New("coverage").Funcs(template.FuncMap{
	"sub": func(a, b int) int { return a - b },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Coverage Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
tr.total { font-weight: bold; background: #f0f0f0; }
.bar { background: #e8e8e8; width: 120px; height: 12px; display: inline-block; }
.bar span { background: #4caf50; height: 12px; display: block; }
</style>
</head>
<body>
<h1>Coverage Report</h1>
<p>Total: {{printf "%.1f" .TotalPercent}}% ({{.TotalCovered}} of {{.TotalStatements}} statements)</p>
<table>
<tr><th>Name</th><th>Stmts</th><th>Miss</th><th>Cover</th><th></th></tr>
{{range .Files}}<tr>
<td>{{.Name}}</td>
<td class="num">{{.Statements}}</td>
<td class="num">{{.Missed}}</td>
<td class="num">{{printf "%.0f" .Percent}}%</td>
<td><span class="bar"><span style="width:{{printf "%.0f" .Percent}}%"></span></span></td>
</tr>
{{end}}<tr class="total">
<td>TOTAL</td>
<td class="num">{{.TotalStatements}}</td>
<td class="num">{{sub .TotalStatements .TotalCovered}}</td>
<td class="num">{{printf "%.0f" .TotalPercent}}%</td>
<td></td>
</tr>
</table>
</body>
</html>
`))
