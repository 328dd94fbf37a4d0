package tailor

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSection(bullets ...string) *Section {
	section := &Section{Title: "Software Engineer", Company: "Tech Corp"}
	for _, text := range bullets {
		section.BulletPoints = append(section.BulletPoints, BulletPoint{Text: text})
	}
	return section
}

// sectionTable builds a table with a header row naming the section followed
// by one row per bullet.
func sectionTable(bullets ...string) string {
	rows := [][]string{{"Software Engineer - Tech Corp"}}
	for _, text := range bullets {
		rows = append(rows, []string{text})
	}
	return tableXML(rows...)
}

func rowTexts(t *testing.T, table *Node) []string {
	t.Helper()
	texts := make([]string, 0)
	for _, row := range table.FindAll("w:tr") {
		texts = append(texts, cellText(row))
	}
	return texts
}

func TestRewriteTableUpdateInPlace(t *testing.T) {
	doc := parseDocument(t, wrapDocument(sectionTable("old one", "old two")))
	table := doc.Find("w:tbl")

	err := rewriteTable(table, testSection("new one", "new two"), 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"Software Engineer - Tech Corp", "new one", "new two"}, rowTexts(t, table))
}

func TestRewriteTablePreservesFormatting(t *testing.T) {
	doc := parseDocument(t, wrapDocument(
		`<w:tbl>`+
			`<w:tr><w:tc><w:p><w:r><w:t>Software Engineer</w:t></w:r></w:p></w:tc></w:tr>`+
			`<w:tr><w:tc><w:p>`+
			`<w:pPr><w:jc w:val="center"/></w:pPr>`+
			`<w:r><w:rPr><w:b/><w:i/></w:rPr><w:t>old bullet</w:t></w:r>`+
			`<w:r><w:t>extra run</w:t></w:r>`+
			`</w:p></w:tc></w:tr>`+
			`</w:tbl>`))
	table := doc.Find("w:tbl")

	err := rewriteTable(table, testSection("new bullet"), 0, zerolog.Nop())
	require.NoError(t, err)

	rows := table.FindAll("w:tr")
	require.Len(t, rows, 2)

	para := rows[1].Find("w:tc").Find("w:p")
	require.NotNil(t, para)

	// Paragraph and run properties of the first run survive; extra runs are
	// gone.
	require.NotNil(t, para.Find("w:pPr"))
	jc := para.Find("w:pPr").Find("w:jc")
	require.NotNil(t, jc)
	val, _ := jc.Attr("w:val")
	assert.Equal(t, "center", val)

	runs := para.FindAll("w:r")
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].Find("w:rPr/w:b"))
	require.NotNil(t, runs[0].Find("w:rPr/w:i"))
	assert.Equal(t, "new bullet", cellText(rows[1]))
}

func TestRewriteTableGrow(t *testing.T) {
	doc := parseDocument(t, wrapDocument(
		`<w:tbl>`+
			`<w:tr><w:tc><w:p><w:r><w:t>Software Engineer</w:t></w:r></w:p></w:tc></w:tr>`+
			`<w:tr><w:tc><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>old one</w:t></w:r></w:p></w:tc></w:tr>`+
			`<w:tr><w:tc><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>old two</w:t></w:r></w:p></w:tc></w:tr>`+
			`</w:tbl>`))
	table := doc.Find("w:tbl")

	err := rewriteTable(table, testSection("one", "two", "three", "four"), 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"Software Engineer", "one", "two", "three", "four"}, rowTexts(t, table))

	// Synthesized rows inherit the template row's run formatting.
	rows := table.FindAll("w:tr")
	for _, row := range rows[1:] {
		assert.NotNil(t, row.Find("w:rPr/w:b"), "row %q lost its formatting", cellText(row))
	}
}

func TestRewriteTableShrink(t *testing.T) {
	doc := parseDocument(t, wrapDocument(sectionTable("one", "two", "three", "four", "five")))
	table := doc.Find("w:tbl")

	err := rewriteTable(table, testSection("only one", "and two"), 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"Software Engineer - Tech Corp", "only one", "and two"}, rowTexts(t, table))
}

func TestRewriteTableShrinkToEmpty(t *testing.T) {
	doc := parseDocument(t, wrapDocument(sectionTable("one", "two")))
	table := doc.Find("w:tbl")

	err := rewriteTable(table, testSection(), 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"Software Engineer - Tech Corp"}, rowTexts(t, table))
}

func TestRewriteTableNoHeaderRow(t *testing.T) {
	// First row text contains neither title nor company, so every row is a
	// bullet row.
	doc := parseDocument(t, wrapDocument(tableXML([]string{"old one"}, []string{"old two"})))
	table := doc.Find("w:tbl")

	err := rewriteTable(table, testSection("new one", "new two"), 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"new one", "new two"}, rowTexts(t, table))
}

func TestRewriteTableEmptyTitleTreatsFirstRowAsHeader(t *testing.T) {
	// An empty title is a substring of any row text, so the first row is
	// always taken for a header.
	doc := parseDocument(t, wrapDocument(tableXML([]string{"first"}, []string{"second"})))
	table := doc.Find("w:tbl")

	section := &Section{BulletPoints: []BulletPoint{{Text: "replaced"}}}
	err := rewriteTable(table, section, 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "replaced"}, rowTexts(t, table))
}

func TestRewriteTableNoTemplateRow(t *testing.T) {
	// Only a header row exists, so there is nothing to clone for new rows.
	doc := parseDocument(t, wrapDocument(tableXML([]string{"Software Engineer at Tech Corp"})))
	table := doc.Find("w:tbl")

	err := rewriteTable(table, testSection("needs a row"), 0, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, IsTemplateRowError(err))
	assert.Contains(t, err.Error(), "Software Engineer")
}

func TestRewriteTableMalformedRows(t *testing.T) {
	doc := parseDocument(t, wrapDocument(
		`<w:tbl>`+
			`<w:tr><w:tc><w:p><w:r><w:t>Software Engineer Tech Corp</w:t></w:r></w:p></w:tc></w:tr>`+
			`<w:tr></w:tr>`+
			`<w:tr><w:tc></w:tc></w:tr>`+
			`</w:tbl>`))
	table := doc.Find("w:tbl")

	// Cell-less and paragraph-less rows are skipped without failing the
	// rewrite.
	err := rewriteTable(table, testSection("a", "b"), 0, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, table.FindAll("w:tr"), 3)
}
