package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/apiparity/internal/command"
	"github.com/staranto/apiparity/internal/meta"
)

// Examples maps a subcommand name to its examples. It is read from
// <docs>/examples.yaml when present.
type Examples map[string][]Example

type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type Flag struct {
	Syntax      string
	Description string
	Default     string
}

type TemplateData struct {
	ID       string
	Short    string
	Usage    string
	Flags    []Flag
	Examples []Example
	Date     string
	Version  string
}

const markdownTemplate = `# apiparity {{ .ID }}

{{ .Short }}

## Usage

` + "```" + `
{{ .Usage }}
` + "```" + `
{{ if .Flags }}
## Options

| Flag | Description | Default |
|---|---|---|
{{- range .Flags }}
| ` + "`{{ .Syntax }}`" + ` | {{ .Description }} | {{ .Default }} |
{{- end }}
{{ end }}
{{- if .Examples }}
## Examples
{{ range .Examples }}
{{ .Description }}

` + "```" + `
{{ .Command }}
` + "```" + `
{{ end }}
{{- end }}
---
apiparity {{ .Version }}, generated {{ .Date }}
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DOCS_DIR")
		os.Exit(2)
	}

	if err := generate(os.Args[1], getVersion(), time.Now()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// generate writes one markdown page per subcommand to <docs>/commands.
func generate(docs, version string, now time.Time) error {
	examples, err := loadExamples(filepath.Join(docs, "examples.yaml"))
	if err != nil {
		return err
	}

	tmpl, err := template.New("command").Parse(markdownTemplate)
	if err != nil {
		return err
	}

	folder := filepath.Join(docs, "commands")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return err
	}

	app := command.NewApp(meta.Meta{})
	for _, sub := range app.Commands {
		if sub.Hidden {
			continue
		}

		data := TemplateData{
			ID:       sub.Name,
			Short:    sub.Usage,
			Usage:    sub.UsageText,
			Flags:    collectFlags(sub.Flags),
			Examples: examples[sub.Name],
			Date:     now.Format("January 2, 2006"),
			Version:  version,
		}

		path := filepath.Join(folder, sub.Name+".md")
		fmt.Println("Generating", path)
		if err := render(tmpl, path, data); err != nil {
			return err
		}
	}
	return nil
}

func render(tmpl *template.Template, path string, data TemplateData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return tmpl.Execute(file, data)
}

// collectFlags describes flags sorted by primary name.
func collectFlags(flags []cli.Flag) []Flag {
	var out []Flag
	for _, f := range flags {
		names := f.Names()
		syntax := make([]string, 0, len(names))
		for _, n := range names {
			if len(n) == 1 {
				syntax = append(syntax, "-"+n)
			} else {
				syntax = append(syntax, "--"+n)
			}
		}

		doc := Flag{Syntax: strings.Join(syntax, ", ")}
		if d, ok := f.(cli.DocGenerationFlag); ok {
			doc.Description = strings.ReplaceAll(d.GetUsage(), "|", "\\|")
			if d.TakesValue() {
				doc.Default = d.GetDefaultText()
			}
		}
		out = append(out, doc)
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.TrimLeft(out[i].Syntax, "-") < strings.TrimLeft(out[j].Syntax, "-")
	})
	return out
}

func loadExamples(path string) (Examples, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Examples{}, nil
	}
	if err != nil {
		return nil, err
	}

	var examples Examples
	if err := yaml.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return examples, nil
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}

	version := strings.TrimSpace(string(out))
	return strings.TrimPrefix(version, "v")
}
