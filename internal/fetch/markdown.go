package fetch

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
	spaceRunPattern = regexp.MustCompile(`[ \t]{2,}`)
)

// maxDepth bounds recursion on pathological documents.
const maxDepth = 256

// HTMLToMarkdown reduces an HTML document to readable markdown: headings,
// paragraphs, list items and image alt text survive. Scripts, styles,
// emphasis and link targets are dropped; link text is kept.
func HTMLToMarkdown(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	render(root, &sb, 0)
	return tidy(sb.String()), nil
}

var headingPrefix = map[string]string{
	"h1": "# ", "h2": "## ", "h3": "### ",
	"h4": "#### ", "h5": "##### ", "h6": "###### ",
}

func render(n *html.Node, sb *strings.Builder, depth int) {
	if depth > maxDepth {
		return
	}

	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "template", "head":
			return
		case "img":
			if alt := attr(n, "alt"); alt != "" {
				sb.WriteString("[Image: " + alt + "] ")
			}
			return
		case "br":
			sb.WriteString("\n")
			return
		}
		if prefix, ok := headingPrefix[n.Data]; ok {
			sb.WriteString("\n\n" + prefix)
		}
		switch n.Data {
		case "p", "div", "section", "article", "main", "header", "footer", "nav", "table", "tr", "ul", "ol":
			sb.WriteString("\n\n")
		case "li":
			sb.WriteString("\n- ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(c, sb, depth+1)
	}

	if n.Type == html.ElementNode {
		if _, ok := headingPrefix[n.Data]; ok {
			sb.WriteString("\n\n")
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func tidy(s string) string {
	s = spaceRunPattern.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
