package tailor

import (
	"encoding/json"
	"os"
	"strings"
)

// SnapshotFileName is the JSON sidecar a structure extraction may write next
// to its source document.
const SnapshotFileName = "document_structure.json"

// TableInfo is the text-level shape of one table: row-major cell texts plus
// the row count and the widest row's cell count. Empty cells contribute an
// empty string and still count toward TotalColumns.
type TableInfo struct {
	Rows         [][]string `json:"rows"`
	TotalRows    int        `json:"total_rows"`
	TotalColumns int        `json:"total_columns"`
}

// StyleInfo records the human-readable name and type of one document style.
type StyleInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// StructureSnapshot is a read-only summary of a document's tables and
// styles, in document order.
type StructureSnapshot struct {
	Tables []TableInfo          `json:"tables"`
	Styles map[string]StyleInfo `json:"styles"`
}

// ExtractStructure walks the parsed document and styles parts into a
// snapshot. The document tree is not modified.
func ExtractStructure(document, styles *Node) *StructureSnapshot {
	snapshot := &StructureSnapshot{
		Tables: make([]TableInfo, 0),
		Styles: make(map[string]StyleInfo),
	}

	for _, table := range document.FindAll("w:tbl") {
		info := TableInfo{Rows: make([][]string, 0)}
		for _, row := range table.FindAll("w:tr") {
			cells := make([]string, 0)
			for _, cell := range row.FindAll("w:tc") {
				cells = append(cells, cellText(cell))
			}
			info.Rows = append(info.Rows, cells)
			if len(cells) > info.TotalColumns {
				info.TotalColumns = len(cells)
			}
		}
		info.TotalRows = len(info.Rows)
		snapshot.Tables = append(snapshot.Tables, info)
	}

	if styles != nil {
		for _, style := range styles.FindAll("w:style") {
			id, ok := style.Attr("w:styleId")
			if !ok {
				continue
			}
			name := style.Find("w:name")
			if name == nil {
				continue
			}
			nameVal, _ := name.Attr("w:val")
			typeVal, _ := style.Attr("w:type")
			snapshot.Styles[id] = StyleInfo{Name: nameVal, Type: typeVal}
		}
	}

	return snapshot
}

// WriteJSON persists the snapshot as an indented JSON sidecar.
func (s *StructureSnapshot) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// cellText concatenates every w:t anywhere beneath the node, in document
// order, with no separator. This is the cell text recorded in snapshots.
func cellText(node *Node) string {
	var b strings.Builder
	for _, t := range node.FindAll("w:t") {
		b.WriteString(t.TextContent())
	}
	return b.String()
}

// searchText joins the stripped text of every w:t beneath the node with
// single spaces. This is the text tables and rows are matched against, so
// runs split across elements still form separable words.
func searchText(node *Node) string {
	parts := make([]string, 0)
	for _, t := range node.FindAll("w:t") {
		text := strings.TrimSpace(t.TextContent())
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
