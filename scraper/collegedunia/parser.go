package collegedunia

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"collegedunia-scraper/models"
)

// Parser extracts candidate colleges from CollegeDunia listing markup.
// Field extraction is deliberately lenient: a row missing cells yields a
// college with empty fields, and the store rejects anything without a name.
type Parser struct{}

// NewParser creates a listing page parser.
func NewParser() *Parser { return &Parser{} }

// Parse implements the collector.Parser contract. valid is false when the
// page carries no listing table at all — distinct from a table with zero
// rows, which parses as an empty, valid page.
func (p *Parser) Parse(content []byte) ([]*models.College, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, false
	}

	table := doc.Find("div.listing-block-container table").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, false
	}

	colleges := make([]*models.College, 0)
	table.Find("tr.table-row").Each(func(_ int, tr *goquery.Selection) {
		colleges = append(colleges, parseRow(tr))
	})
	return colleges, true
}

func parseRow(tr *goquery.Selection) *models.College {
	c := &models.College{}

	tds := tr.ChildrenFiltered("td")
	if tds.Length() < 2 {
		return c
	}

	c.Rank = collapse(tds.Eq(0).Text())

	info := tds.Eq(1)
	c.Name = collapse(info.Find("a.college_name h3").First().Text())

	if loc := info.Find("span.location").First(); loc.Length() > 0 {
		parts := strings.SplitN(loc.Text(), ",", 2)
		c.City = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			c.State = strings.TrimSpace(parts[1])
		}
	}

	if fees := tr.Find("td.col-fees").First(); fees.Length() > 0 {
		var parts []string
		if amount := collapse(fees.Find("span.text-lg.text-green").First().Text()); amount != "" {
			parts = append(parts, amount)
		}
		if label, ok := fees.Find("span[title]").First().Attr("title"); ok && label != "" {
			parts = append(parts, "("+label+")")
		}
		c.Fees = strings.Join(parts, " ")
	}

	c.Placement = collapse(tr.Find("td.col-placement").First().Text())
	c.Reviews = collapse(tr.Find("td.col-reviews").First().Text())
	c.Ranking = collapse(tr.Find("td.col-ranking").First().Text())

	return c
}

// collapse trims and folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
