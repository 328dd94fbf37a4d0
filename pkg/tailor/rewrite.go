package tailor

import (
	"strings"

	"github.com/rs/zerolog"
)

// rewriteTable reconciles one table's bullet rows with a matched section.
// Rows are snapshotted up front so removals and appends never disturb the
// iteration order. Row i carries bullet i; surplus rows are removed; surplus
// bullets get rows cloned from the last existing bullet row, so borders,
// shading and spacing survive the rewrite.
func rewriteTable(table *Node, section *Section, tableIdx int, logger zerolog.Logger) error {
	rows := table.FindAll("w:tr")
	bullets := section.BulletPoints

	// Header detection compares raw, non-normalized strings. An empty title
	// always matches, so such sections always treat the first row as a
	// header. Kept for compatibility with documents produced against that
	// behavior.
	start := 0
	if len(rows) > 0 {
		firstRowText := searchText(rows[0])
		if strings.Contains(firstRowText, section.Title) || strings.Contains(firstRowText, section.Company) {
			start = 1
		}
	}
	bulletRows := rows[start:]

	if len(bulletRows) == 0 && len(bullets) > 0 {
		return NewTemplateRowError(section.Title)
	}

	for i, row := range bulletRows {
		if i < len(bullets) {
			updateRowText(row, bullets[i].Text, tableIdx, start+i, logger)
			continue
		}
		if !table.RemoveChild(row) {
			logger.Warn().
				Int("table", tableIdx).
				Int("row", start+i).
				Str("section", section.Title).
				Msg("surplus row is not a direct table child, left in place")
		}
	}

	for j := len(bulletRows); j < len(bullets); j++ {
		row := bulletRows[len(bulletRows)-1].Clone()
		updateRowText(row, bullets[j].Text, tableIdx, start+j, logger)
		table.AppendChild(row)
	}

	return nil
}

// updateRowText replaces the text of a row's first cell while keeping its
// formatting. The first paragraph's w:pPr and its first run's w:rPr are
// carried into a fresh paragraph holding a single run with the new text;
// every old paragraph in the cell is dropped. Rows without a cell or cells
// without a paragraph are left untouched and only warned about.
func updateRowText(row *Node, text string, tableIdx, rowIdx int, logger zerolog.Logger) {
	cell := row.Find("w:tc")
	if cell == nil {
		logger.Warn().
			Int("table", tableIdx).
			Int("row", rowIdx).
			Msg("row has no cell, skipping text update")
		return
	}

	paragraphs := cell.FindAll("w:p")
	if len(paragraphs) == 0 {
		logger.Warn().
			Int("table", tableIdx).
			Int("row", rowIdx).
			Msg("cell has no paragraph, skipping text update")
		return
	}

	first := paragraphs[0]
	pPr := first.Find("w:pPr")
	var rPr *Node
	if run := first.Find("w:r"); run != nil {
		rPr = run.Find("w:rPr")
	}

	paragraph := NewElement("w:p")
	if pPr != nil {
		paragraph.AppendChild(pPr)
	}
	run := NewElement("w:r")
	if rPr != nil {
		run.AppendChild(rPr)
	}
	textNode := NewElement("w:t")
	textNode.SetText(text)
	run.AppendChild(textNode)
	paragraph.AppendChild(run)

	for _, p := range paragraphs {
		if !cell.RemoveChild(p) {
			logger.Warn().
				Int("table", tableIdx).
				Int("row", rowIdx).
				Msg("paragraph is not a direct cell child, left in place")
		}
	}
	cell.AppendChild(paragraph)
}
