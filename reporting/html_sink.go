package reporting

import (
	"html/template"
	"os"
	"path/filepath"
)

// HTMLResultsFilename is the report file written into the run's log
// directory.
const HTMLResultsFilename = "results.html"

// WriteHTMLReport renders the run report into dir and returns the
// report's path.
func WriteHTMLReport(report *RunReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, HTMLResultsFilename)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if err := htmlResultsTemplate.Execute(out, report); err != nil {
		return "", err
	}
	return path, nil
}

var htmlResultsTemplate = template.Must(template.New("results").Funcs(template.FuncMap{
	"formatDuration": formatDuration,
	"statusClass": func(passed bool) string {
		if passed {
			return "pass"
		}
		return "fail"
	},
	"statusText": func(passed bool) string {
		if passed {
			return "pass"
		}
		return "fail"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Test Results {{.RunID}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.pass { color: #2e7d32; font-weight: bold; }
.fail { color: #c62828; font-weight: bold; }
.meta { color: #666; }
</style>
</head>
<body>
<h1>Test Results <span class="{{statusClass .Passed}}">{{statusText .Passed}}</span></h1>
<p class="meta">run {{.RunID}} &middot; dcctest {{.Version}} &middot; {{formatDuration .Duration}}</p>
<table>
<tr><th>Context</th><th>Target</th><th>Files</th><th>Tests</th><th>Errors</th><th>Status</th></tr>
{{range .Suites}}<tr>
<td>{{.Context}}</td>
<td>{{.Target}}</td>
<td class="num">{{.FilesRun}}</td>
<td class="num">{{.TestsRun}}</td>
<td class="num">{{.Errors}}</td>
<td class="{{statusClass .Passed}}">{{statusText .Passed}}</td>
</tr>
{{end}}<tr>
<td><strong>TOTAL</strong></td>
<td></td>
<td class="num">{{.Stats.FilesRun}}</td>
<td class="num">{{.Stats.TestsRun}}</td>
<td class="num">{{.Stats.Errors}}</td>
<td class="{{statusClass .Passed}}">{{statusText .Passed}}</td>
</tr>
</table>
</body>
</html>
`))
