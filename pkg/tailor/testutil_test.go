package tailor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testContentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const testRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const testStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="character" w:styleId="Strong"><w:name w:val="Strong"/></w:style>
</w:styles>`

// wrapDocument builds a complete document part around body markup.
func wrapDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`
}

// tableXML builds a table where every cell holds one plain paragraph.
func tableXML(rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<w:tc><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:tc>", cell)
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// buildDocxBytes assembles an in-memory container from the given parts.
// Standard parts are filled in unless overridden.
func buildDocxBytes(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	defaults := map[string]string{
		"[Content_Types].xml": testContentTypesXML,
		"_rels/.rels":         testRelsXML,
		"word/styles.xml":     testStylesXML,
	}
	for name, content := range defaults {
		if _, ok := parts[name]; !ok {
			parts[name] = content
		}
	}

	return buildRawZip(t, parts)
}

// buildRawZip writes exactly the given entries into an in-memory zip.
func buildRawZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range parts {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

// writeDocxFile writes a container with the given document part into a temp
// directory and returns its path.
func writeDocxFile(t *testing.T, documentXML string) string {
	t.Helper()
	data := buildDocxBytes(t, map[string]string{"word/document.xml": documentXML})
	path := filepath.Join(t.TempDir(), "test.docx")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// readContainerPart extracts one part's bytes from a container on disk.
func readContainerPart(t *testing.T, containerPath, part string) []byte {
	t.Helper()
	reader, err := zip.OpenReader(containerPath)
	require.NoError(t, err)
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != part {
			continue
		}
		src, err := file.Open()
		require.NoError(t, err)
		defer src.Close()
		var buf bytes.Buffer
		_, err = buf.ReadFrom(src)
		require.NoError(t, err)
		return buf.Bytes()
	}
	t.Fatalf("part %s not found in %s", part, containerPath)
	return nil
}

// parseDocument parses document markup for tests operating below the
// container level.
func parseDocument(t *testing.T, documentXML string) *Node {
	t.Helper()
	doc, err := ParseXML(documentPart, []byte(documentXML))
	require.NoError(t, err)
	return doc
}
