package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/fluxqueue/fluxqueue/internal/memory"
)

// HTMLGenerator renders a Report as a dark-themed HTML dashboard page.
type HTMLGenerator struct {
	template *template.Template
}

func htmlFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.Format("2006-01-02 15:04:05")
		},
		"formatDuration": func(d time.Duration) string {
			return d.String()
		},
		"pct": func(n, total int) string {
			if total == 0 {
				return "0.0%"
			}
			return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
		},
	}
}

// NewHTMLGenerator creates a new HTML generator using the default template.
func NewHTMLGenerator() *HTMLGenerator {
	tmpl := template.Must(template.New("report").Funcs(htmlFuncMap()).Parse(htmlTemplate))
	return &HTMLGenerator{template: tmpl}
}

// Generate renders the report as HTML. The template is executed into a
// pooled buffer first so a failed render never writes a partial page to w.
func (g *HTMLGenerator) Generate(report *Report, w io.Writer) error {
	buf := memory.GetBuffer()
	defer memory.PutBuffer(buf)

	if err := g.template.Execute(buf, report); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Extension returns the file extension.
func (g *HTMLGenerator) Extension() string {
	return "html"
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - fluxqueue report</title>
    <style>
        :root {
            --bg-dark: #0D0D0D;
            --bg-panel: #1A1A2E;
            --bg-header: #16213E;
            --text-primary: #E0E0E0;
            --text-dim: #666666;
            --cyan: #00FFFF;
            --magenta: #FF00FF;
            --green: #00FF00;
            --yellow: #FFFF00;
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: 'Segoe UI', 'Roboto', 'Helvetica Neue', sans-serif;
            background: var(--bg-dark);
            color: var(--text-primary);
            line-height: 1.6;
            min-height: 100vh;
        }

        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }

        header {
            background: var(--bg-header);
            padding: 30px;
            border-radius: 10px;
            margin-bottom: 30px;
            border: 1px solid var(--cyan);
        }

        h1 { color: var(--cyan); font-size: 2.5em; margin-bottom: 10px; text-shadow: 0 0 10px var(--cyan); }

        .meta { color: var(--text-dim); font-size: 0.9em; }
        .meta span { margin-right: 20px; }

        .section {
            background: var(--bg-panel);
            border-radius: 10px;
            padding: 20px;
            margin-bottom: 20px;
            border: 1px solid var(--magenta);
        }

        h2 { color: var(--magenta); margin-bottom: 20px; font-size: 1.5em; }

        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
        }

        .stat-card {
            background: var(--bg-header);
            padding: 20px;
            border-radius: 8px;
            text-align: center;
            border: 1px solid var(--cyan);
        }

        .stat-value { font-size: 2em; font-weight: bold; color: var(--cyan); }
        .stat-label { color: var(--text-dim); font-size: 0.9em; margin-top: 5px; }

        .event-list { list-style: none; }

        .event-item {
            background: var(--bg-header);
            padding: 12px 15px;
            margin-bottom: 10px;
            border-radius: 8px;
            border-left: 4px solid var(--cyan);
            display: flex;
            justify-content: space-between;
        }

        .event-item.minimize { border-left-color: var(--yellow); }
        .event-item.frontier { border-left-color: var(--green); }

        .event-meta { color: var(--text-dim); font-size: 0.8em; }

        .no-events { text-align: center; padding: 40px; color: var(--text-dim); }

        footer { text-align: center; color: var(--text-dim); padding: 20px; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>{{.Title}}</h1>
            <div class="meta">
                <span>generated: {{formatTime .GeneratedAt}}</span>
                <span>run duration: {{formatDuration .RunDuration}}</span>
            </div>
        </header>

        <section class="section">
            <h2>queue state</h2>
            <div class="stats-grid">
                <div class="stat-card">
                    <div class="stat-value">{{.QueueSize}}</div>
                    <div class="stat-label">queue size</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.ActiveSeeds}}</div>
                    <div class="stat-label">active seeds</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.FavoredSeeds}}</div>
                    <div class="stat-label">favored</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.PendingFavored}}</div>
                    <div class="stat-label">pending favored</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.FrontierEdges}}</div>
                    <div class="stat-label">frontier edges</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.AliasTableSize}}</div>
                    <div class="stat-label">alias table size</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.CacheEntries}} / {{.CacheMaxEntries}}</div>
                    <div class="stat-label">testcase cache</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{formatTime .LastMinimizeAt}}</div>
                    <div class="stat-label">last minimize</div>
                </div>
            </div>
        </section>

        {{if .LastMinimizeTotal}}
        <section class="section">
            <h2>last minimization</h2>
            <p>kept {{.LastMinimizeKept}} of {{.LastMinimizeTotal}} testcases ({{pct .LastMinimizeKept .LastMinimizeTotal}})</p>
        </section>
        {{end}}

        <section class="section">
            <h2>events ({{len .Events}})</h2>
            {{if .Events}}
            <ul class="event-list">
                {{range .Events}}
                <li class="event-item {{.Kind}}">
                    <span>{{.Description}}</span>
                    <span class="event-meta">{{formatTime .Timestamp}}</span>
                </li>
                {{end}}
            </ul>
            {{else}}
            <div class="no-events">no events recorded</div>
            {{end}}
        </section>

        <footer>fluxqueue scheduler report</footer>
    </div>
</body>
</html>`

// SetTemplate overrides the generator's template.
func (g *HTMLGenerator) SetTemplate(tmpl *template.Template) {
	g.template = tmpl
}

// GetDefaultTemplate returns the default HTML template string.
func GetDefaultTemplate() string {
	return htmlTemplate
}

// CustomHTMLGenerator builds a generator from a caller-supplied template.
func CustomHTMLGenerator(templateStr string) (*HTMLGenerator, error) {
	tmpl, err := template.New("report").Funcs(htmlFuncMap()).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &HTMLGenerator{template: tmpl}, nil
}
