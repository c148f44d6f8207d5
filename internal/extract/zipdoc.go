package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	contentTypesPath    = "[Content_Types].xml"
	docxDocumentXMLPath = "word/document.xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	pptxSlidePrefix     = "ppt/slides/slide"
	odfContentPath      = "content.xml"
)

var (
	// <w:t>text</w:t> with any attributes
	wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	// <a:t>text</a:t> with any attributes
	atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

	// PartName of the main document; attribute order varies between producers.
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

	odfBlockEnd = regexp.MustCompile(`</text:(?:p|h)>|<text:line-break/>`)
	odfTab      = regexp.MustCompile(`<text:tab/>|<text:s/>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	blankLines  = regexp.MustCompile(`\n{2,}`)
	slideNumber = regexp.MustCompile(`slide(\d+)\.xml$`)
)

func openZip(content []byte, kind string) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract %s: not a zip: %w", kind, err)
	}
	return zr, nil
}

// readZipEntry returns the bytes of name, or nil if the archive has no such entry.
func readZipEntry(zr *zip.Reader, name, kind string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("extract %s: open %s: %w", kind, f.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("extract %s: read %s: %w", kind, f.Name, err)
		}
		return data, nil
	}
	return nil, nil
}

// joinTextRuns joins the first capture group of every match with spaces.
func joinTextRuns(b *strings.Builder, re *regexp.Regexp, xml []byte) {
	for _, m := range re.FindAllSubmatch(xml, -1) {
		text := strings.TrimSpace(html.UnescapeString(string(m[1])))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
}

// findDocxMainDocumentPath reads the main document part from [Content_Types].xml.
// Returns "" if not declared.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	data, err := readZipEntry(zr, contentTypesPath, "DOCX")
	if err != nil || data == nil {
		return ""
	}
	for _, re := range []*regexp.Regexp{partNameRe, partNameRe2} {
		if m := re.FindSubmatch(data); m != nil {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return ""
}

// extractDOCX extracts all <w:t> runs from the main document part. Real-world
// files carry attributes on <w:p> and <w:r>, so runs are matched directly.
func extractDOCX(content []byte) (string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return "", err
	}
	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, err := readZipEntry(zr, docPath, "DOCX")
	if err != nil {
		return "", err
	}
	if docXML == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", docPath)
	}
	var b strings.Builder
	joinTextRuns(&b, wtTag, docXML)
	return b.String(), nil
}

// extractPPTX extracts <a:t> runs from every slide in slide-number order.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}
	type slide struct {
		n    int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePrefix) {
			continue
		}
		m := slideNumber.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{n: n, name: f.Name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var b strings.Builder
	for _, s := range slides {
		data, err := readZipEntry(zr, s.name, "PPTX")
		if err != nil {
			return "", err
		}
		joinTextRuns(&b, atTag, data)
	}
	return b.String(), nil
}

// extractODF extracts text from an OpenDocument package (ODP, ODS, ODT).
// Paragraphs and headings become lines; all other markup is dropped.
func extractODF(content []byte, kind string) (string, error) {
	zr, err := openZip(content, kind)
	if err != nil {
		return "", err
	}
	data, err := readZipEntry(zr, odfContentPath, kind)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("extract %s: %s not found", kind, odfContentPath)
	}
	if i := bytes.Index(data, []byte("<office:body")); i >= 0 {
		data = data[i:]
	}
	s := odfBlockEnd.ReplaceAllString(string(data), "\n")
	s = odfTab.ReplaceAllString(s, " ")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return blankLines.ReplaceAllString(strings.Join(kept, "\n"), "\n"), nil
}
