// Package scrape fetches and parses arena history pages from the source
// site.
package scrape

import (
	"bytes"
	"regexp"
	"strings"

	"arena-tracker/internal/reconstruct"

	"golang.org/x/net/html"
)

var gameIDPattern = regexp.MustCompile(`/match/(\d+)`)

// ParseArenaTable extracts the arena history table from a page body.
// Each data row becomes a RawRow whose Position is its index in the
// table, top row first. Header rows (class "tableHeader") are skipped
// and do not consume a position.
func ParseArenaTable(body []byte) ([]reconstruct.RawRow, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var rows []reconstruct.RawRow
	position := 0
	for _, tr := range findAll(doc, "tr") {
		if hasClass(tr, "tableHeader") {
			continue
		}
		cells := findAll(tr, "td")
		if len(cells) == 0 {
			continue
		}

		row := reconstruct.RawRow{Position: position}
		texts := make([]string, len(cells))
		for i, cell := range cells {
			texts[i] = strings.TrimSpace(nodeText(cell))
		}

		// Layout: date, opponent, four section cells, total, then
		// optionally four price cells. Shorter rows are passed through
		// and rejected during classification.
		if len(texts) > 0 {
			row.DateRaw = texts[0]
		}
		if len(texts) > 1 {
			row.Opponent = texts[1]
		}
		for i := 0; i < 4 && 2+i < len(texts); i++ {
			row.SectionCells[i] = texts[2+i]
		}
		if len(texts) > 6 {
			row.TotalCell = texts[6]
		}
		for i := 0; i < 4 && 7+i < len(texts); i++ {
			row.PriceCells[i] = texts[7+i]
		}
		row.GameID = extractGameID(tr)

		rows = append(rows, row)
		position++
	}

	return rows, nil
}

func extractGameID(tr *html.Node) string {
	for _, a := range findAll(tr, "a") {
		for _, attr := range a.Attr {
			if attr.Key != "href" {
				continue
			}
			if m := gameIDPattern.FindStringSubmatch(attr.Val); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			if tag == "tr" {
				// nested tables keep their own rows
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
