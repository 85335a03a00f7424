// Embedded documentation for the query tool.
package main

import (
	"embed"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed docs/*
var docsFiles embed.FS

// syntaxDoc is the query language reference.
const syntaxDoc = "query-language.md"

// readDocsFile reads a file from the embedded docs directory.
func readDocsFile(name string) ([]byte, error) {
	return docsFiles.ReadFile("docs/" + name)
}

// renderMarkdown converts a markdown document to HTML.
func renderMarkdown(md []byte) []byte {
	// Create markdown parser with extensions
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(md)

	// Create HTML renderer with options
	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}
