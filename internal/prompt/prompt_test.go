package prompt

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/refdata"
)

func buildPlan(t *testing.T, target, raceDate string) *plan.Plan {
	t.Helper()
	b := plan.NewBuilder(refdata.MustEmbedded(), zerolog.Nop())
	b.Now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }
	p, err := b.Build(context.Background(), plan.Request{
		Name:          "Aki",
		Age:           38,
		CurrentTime:   "3:30:00",
		TargetTime:    target,
		RaceName:      "Spring Marathon",
		RaceDate:      raceDate,
		PracticeRaces: "2027-01-18 half marathon",
		TrainingDays:  "5",
		Concerns:      "Sore lower back on long runs",
	})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return p
}

func TestGenerateDefault(t *testing.T) {
	g := NewGenerator(config.PromptConfig{}, "1.2.0", zerolog.Nop())
	out, err := g.Generate(buildPlan(t, "3:20:00", "2027-03-07"))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	for _, want := range []string{
		"- Nickname: Aki",
		"- Age: 38 / Gender: unknown",
		"(2027/03/07, Sunday)",
		"Training period: 20 weeks, 2026/10/19 to 2027/03/07",
		"Sore lower back on long runs",
		"- Current: 44.56 / Target: 47.24 (gap 2.68)",
		"| 1 (Base) | 1-5 | 44.56 |",
		"| 4 (Taper) | 16-20 | 47.24 |",
		"### Phase 2 (VDOT 45.45)",
		"# Practice races\n2027-01-18 half marathon",
		"**Week 1 (10/19 - XX/XX)**",
		"*Generated by Marathon Coach v1.2.0*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if strings.Contains(out, "Adjusted target") {
		t.Error("Reachable target should not carry an adjustment note")
	}
	if strings.Contains(out, "<no value>") {
		t.Error("Template referenced a missing field")
	}
}

func TestGenerateCappedAndLate(t *testing.T) {
	g := NewGenerator(config.PromptConfig{}, "dev", zerolog.Nop())
	out, err := g.Generate(buildPlan(t, "3:00:00", "2026-11-22"))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	for _, want := range []string{
		"## Adjusted target",
		"- Intermediate VDOT: 47.56 (gap 3.00)",
		"- Final goal: VDOT 53.53 / 3:00:00",
		"## Late start",
		"Only 5 weeks remain",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestGenerateCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	if err := os.WriteFile(path, []byte("VDOT {{f2 .Current.Score}} for {{.Request.Name}}"), 0o600); err != nil {
		t.Fatal(err)
	}

	g := NewGenerator(config.PromptConfig{CustomPath: path}, "dev", zerolog.Nop())
	out, err := g.Generate(buildPlan(t, "3:20:00", "2027-03-07"))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if out != "VDOT 44.56 for Aki" {
		t.Errorf("Unexpected custom output %q", out)
	}
}

func TestGenerateWithFallback(t *testing.T) {
	var logs bytes.Buffer
	g := NewGenerator(config.PromptConfig{CustomPath: "/nonexistent/prompt.tmpl"}, "dev", zerolog.New(&logs))
	p := buildPlan(t, "3:20:00", "2027-03-07")

	if _, err := g.Generate(p); err == nil {
		t.Fatal("Expected error for missing custom prompt")
	}
	out, err := g.GenerateWithFallback(p)
	if err != nil {
		t.Fatalf("GenerateWithFallback() failed: %v", err)
	}
	if !strings.HasPrefix(out, "# Role") {
		t.Errorf("Expected default prompt, got %q", out[:min(len(out), 40)])
	}
	if !strings.Contains(logs.String(), "using default prompt instead") {
		t.Errorf("Expected fallback to be logged, got %q", logs.String())
	}
}

func TestGenerateWithFallbackBadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tmpl")
	if err := os.WriteFile(path, []byte("{{.Nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(config.PromptConfig{CustomPath: path}, "dev", zerolog.Nop())
	out, err := g.GenerateWithFallback(buildPlan(t, "3:20:00", "2027-03-07"))
	if err != nil {
		t.Fatalf("GenerateWithFallback() failed: %v", err)
	}
	if !strings.Contains(out, "# Runner") {
		t.Error("Expected default prompt after parse failure")
	}
}

func TestMarkdown(t *testing.T) {
	b := Markdown("# Plan")
	if !bytes.Equal(b[:3], []byte{0xEF, 0xBB, 0xBF}) {
		t.Errorf("Missing BOM: % x", b[:3])
	}
	if string(b[3:]) != "# Plan" {
		t.Errorf("Unexpected body %q", b[3:])
	}
}

func TestFilename(t *testing.T) {
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"Aki":        "training_plan_Aki_20261017.md",
		" Aki Mori ": "training_plan_Aki_Mori_20261017.md",
		"a/b":        "training_plan_a_b_20261017.md",
		"":           "training_plan_runner_20261017.md",
	}
	for name, want := range tests {
		if got := Filename(name, day); got != want {
			t.Errorf("Filename(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSanitize(t *testing.T) {
	in := "# Week 1\n<hr>\n| a | b |\n<p>hello</p>\nKeep <3 and a->b\n<br/>"
	want := "# Week 1\n| a | b |\nKeep <3 and a->b"
	if got := Sanitize(in); got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
	if Sanitize("") != "" {
		t.Error("Expected empty output")
	}
}
