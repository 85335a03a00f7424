package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"asdb_search/query"
	"asdb_search/search"
)

// runCommand executes the command tree with args and returns what it printed.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

const testCategories = `{
	"options": [{"label": "BGC type", "value": "type", "type": "text", "countable": false, "description": ""}],
	"groups": [
		{
			"header": "Taxonomy",
			"options": [
				{"label": "Genus", "value": "genus", "type": "text", "countable": false, "description": ""},
				{"label": "CDS", "value": "cds", "type": "numeric", "countable": true, "description": "",
					"filters": [{"label": "Length", "type": "numeric", "value": "length"}]},
			],
		},
	],
}`

func TestRender(t *testing.T) {
	input := `{
		// the example search
		"termType": "op",
		"operation": "and",
		"left": {"termType": "expr", "category": "type", "value": "nrps"},
		"right": {"termType": "expr", "category": "genus", "value": "Streptomyces"},
	}`

	t.Run("stdin", func(t *testing.T) {
		out, err := runCommand(t, input, "render")
		if err != nil {
			t.Fatalf("render error: %v", err)
		}
		expected := "( {[type|nrps]} AND {[genus|Streptomyces]} )\n"
		if out != expected {
			t.Errorf("render = %q, want %q", out, expected)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, "term.json", `{"termType": "expr", "category": "contig_edge"}`)
		out, err := runCommand(t, "", "render", path)
		if err != nil {
			t.Fatalf("render error: %v", err)
		}
		if out != "{[contig_edge]}\n" {
			t.Errorf("render = %q", out)
		}
	})

	t.Run("invalid termType", func(t *testing.T) {
		_, err := runCommand(t, `{"termType": "bob"}`, "render", "-")
		if err == nil || !strings.Contains(err.Error(), "invalid termType") {
			t.Errorf("render error = %v, want invalid termType", err)
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		out, err := runCommand(t, "", "parse", "( {[type|nrps]} AND {[genus|Streptomyces]} )")
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		term, err := query.BuildTerm([]byte(out))
		if err != nil {
			t.Fatalf("BuildTerm() error: %v", err)
		}
		if !query.Equal(term, search.Example()) {
			t.Errorf("parse = %s, want %s", term, search.Example())
		}
	})

	t.Run("words are joined", func(t *testing.T) {
		out, err := runCommand(t, "", "parse", "{[strain|MMB-3", "(CPR1)]}")
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		if !strings.Contains(out, "MMB-3 (CPR1)") {
			t.Errorf("parse = %s", out)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := runCommand(t, "", "parse", "-o", "yaml", "{[type|nrps] WITH [length|>:4]}")
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		for _, want := range []string{`"termType": "expr"`, `"category": "type"`, `"operator": ">"`, `"value": 4`} {
			if !strings.Contains(out, want) {
				t.Errorf("parse -o yaml = %q, want it to contain %q", out, want)
			}
		}
		if strings.Contains(out, "{") {
			t.Errorf("parse -o yaml should use block style, got %q", out)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := runCommand(t, "", "parse", "{[type|nrps]")
		if err == nil {
			t.Fatal("Expected error")
		}
		if !strings.Contains(err.Error(), "position 12") {
			t.Errorf("parse error = %v, want position 12", err)
		}
	})

	t.Run("result envelope", func(t *testing.T) {
		out, err := runCommand(t, "", "parse", "--result", "{[type")
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		var result query.ConvertResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", out, err)
		}
		if result.Valid || result.Error == nil {
			t.Errorf("parse --result = %s", out)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := runCommand(t, "", "parse", "-o", "xml", "{[type]}"); err == nil {
			t.Error("Expected error for unknown output format")
		}
	})
}

func TestRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		out, err := runCommand(t, "", "request", "{[type|pbde]}")
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		var req search.Request
		if err := json.Unmarshal([]byte(out), &req); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", out, err)
		}
		if req.Query.Search != "cluster" || req.Query.ReturnType != "json" || req.Paginate != 50 || req.Offset != 0 {
			t.Errorf("request = %+v", req)
		}
		if req.Query.Terms.String() != "{[type|pbde]}" {
			t.Errorf("request terms = %s", req.Query.Terms)
		}
	})

	t.Run("configuration and flags", func(t *testing.T) {
		cfg := writeFile(t, "asdbq.json", `{"search": {"type": "gene", "paginate": 10}}`)
		out, err := runCommand(t, "", "--config", cfg, "request", "--offset", "20", "--return-type", "csv", "{[type|pbde]}")
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		var req search.Request
		if err := json.Unmarshal([]byte(out), &req); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", out, err)
		}
		if req.Query.Search != "gene" || req.Query.ReturnType != "csv" || req.Paginate != 10 || req.Offset != 20 {
			t.Errorf("request = %+v", req)
		}
	})

	t.Run("invalid return type", func(t *testing.T) {
		if _, err := runCommand(t, "", "request", "--return-type", "xml", "{[type|pbde]}"); err == nil {
			t.Error("Expected error for invalid return type")
		}
	})

	t.Run("missing configuration file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.json")
		if _, err := runCommand(t, "", "--config", missing, "request", "{[type]}"); err == nil {
			t.Error("Expected error for missing --config file")
		}
	})
}

func TestModules(t *testing.T) {
	out, err := runCommand(t, "", "modules", "S=?+PKS_KS,0|T=PCP")
	if err != nil {
		t.Fatalf("modules error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("modules printed %d lines, want 7: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "Condensation") || !strings.Contains(lines[0], "?+PKS_KS,0") {
		t.Errorf("first step = %q", lines[0])
	}
	if lines[6] != "S=?+PKS_KS,0|T=PCP" {
		t.Errorf("normalized = %q", lines[6])
	}

	out, err = runCommand(t, "", "modules", "--remove", "S:0:0", "--remove", "S:1:0", "S=?+PKS_KS,0|T=PCP")
	if err != nil {
		t.Fatalf("modules --remove error: %v", err)
	}
	if !strings.HasSuffix(out, "S=PKS_KS|T=PCP\n") {
		t.Errorf("modules --remove = %q", out)
	}

	if _, err := runCommand(t, "", "modules", "--remove", "X:0:0", "S=?"); err == nil {
		t.Error("Expected error for unknown step")
	}
}

func TestCheck(t *testing.T) {
	vocabulary := writeFile(t, "categories.json", testCategories)

	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"valid", "( {[type|nrps]} AND {[cds|3] WITH [length|>:100]} )", ""},
		{"unknown category", "{[bob|x]}", `unknown category "bob"`},
		{"unknown filter", "{[genus|Streptomyces] WITH [length]}", `has no filter "length"`},
		{"syntax error", "{[type", "position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, "", "check", "--categories", vocabulary, tt.query)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("check error: %v", err)
				}
				if out != "ok\n" {
					t.Errorf("check = %q, want ok", out)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("check error = %v, want %q", err, tt.wantErr)
			}
		})
	}

	t.Run("vocabulary from configuration", func(t *testing.T) {
		cfg := writeFile(t, "asdbq.json", `{"categories_file": "`+vocabulary+`"}`)
		out, err := runCommand(t, "", "--config", cfg, "check", "{[genus|Streptomyces]}")
		if err != nil {
			t.Fatalf("check error: %v", err)
		}
		if out != "ok\n" {
			t.Errorf("check = %q, want ok", out)
		}
	})

	t.Run("no vocabulary", func(t *testing.T) {
		if _, err := runCommand(t, "", "check", "{[type]}"); err == nil {
			t.Error("Expected error without a vocabulary")
		}
	})
}

func TestSyntax(t *testing.T) {
	out, err := runCommand(t, "", "syntax")
	if err != nil {
		t.Fatalf("syntax error: %v", err)
	}
	if !strings.HasPrefix(out, "# Query language") {
		t.Errorf("syntax = %q", out[:min(len(out), 40)])
	}

	out, err = runCommand(t, "", "syntax", "--html")
	if err != nil {
		t.Fatalf("syntax --html error: %v", err)
	}
	if !strings.Contains(out, `<h1 id="query-language">Query language</h1>`) {
		t.Errorf("syntax --html did not render the heading: %q", out[:min(len(out), 80)])
	}
	if !strings.Contains(out, "<table>") {
		t.Error("syntax --html did not render the step table")
	}
}

func TestExample(t *testing.T) {
	out, err := runCommand(t, "", "example")
	if err != nil {
		t.Fatalf("example error: %v", err)
	}
	if out != "( {[type|nrps]} AND {[genus|Streptomyces]} )\n" {
		t.Errorf("example = %q", out)
	}

	out, err = runCommand(t, "", "example", "-o", "json")
	if err != nil {
		t.Fatalf("example -o json error: %v", err)
	}
	term, err := query.BuildTerm([]byte(out))
	if err != nil {
		t.Fatalf("BuildTerm() error: %v", err)
	}
	if !query.Equal(term, search.Example()) {
		t.Errorf("example -o json = %s", term)
	}
}
