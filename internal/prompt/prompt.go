// Package prompt renders a computed plan into the text sent to the plan
// generator.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

// AppName appears in the footer of every generated plan.
const AppName = "Marathon Coach"

// View is the data a prompt template is executed with.
type View struct {
	*plan.Plan
	AppName string
	Version string
	// CycleGap is the improvement this cycle aims for, after capping.
	CycleGap float64
}

var funcs = template.FuncMap{
	"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date": func(t time.Time, layout ...string) string {
		if len(layout) > 0 {
			return t.Format(layout[0])
		}
		return t.Format("2006/01/02")
	},
	"pace": func(set vdot.PaceSet, kind string) string {
		return set.Display(vdot.PaceKind(kind))
	},
}

// Generator handles plan prompt rendering
type Generator struct {
	customPath string
	version    string
	log        zerolog.Logger
}

// NewGenerator creates a new prompt generator
func NewGenerator(cfg config.PromptConfig, version string, log zerolog.Logger) *Generator {
	return &Generator{customPath: cfg.CustomPath, version: version, log: log}
}

// Template returns the custom template when one is configured, otherwise the
// built-in one.
func (g *Generator) Template() (*template.Template, error) {
	if g.customPath == "" {
		return defaultTemplate, nil
	}
	data, err := os.ReadFile(g.customPath)
	if err != nil {
		return nil, fmt.Errorf("read custom prompt %s: %w", g.customPath, err)
	}
	tmpl, err := template.New("custom").Funcs(funcs).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse custom prompt %s: %w", g.customPath, err)
	}
	return tmpl, nil
}

// Generate renders p with the configured template.
func (g *Generator) Generate(p *plan.Plan) (string, error) {
	tmpl, err := g.Template()
	if err != nil {
		return "", err
	}
	return g.render(tmpl, p)
}

// GenerateWithFallback renders p, falling back to the built-in template when
// the custom one cannot be loaded or executed.
func (g *Generator) GenerateWithFallback(p *plan.Plan) (string, error) {
	out, err := g.Generate(p)
	if err == nil {
		return out, nil
	}
	if g.customPath == "" {
		return "", err
	}
	g.log.Warn().Err(err).Str("path", g.customPath).Msg("custom prompt failed, using default prompt instead")
	return g.render(defaultTemplate, p)
}

func (g *Generator) render(tmpl *template.Template, p *plan.Plan) (string, error) {
	v := View{
		Plan:     p,
		AppName:  AppName,
		Version:  g.version,
		CycleGap: table.Round2(p.EffectiveTarget - p.Current.Score),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
