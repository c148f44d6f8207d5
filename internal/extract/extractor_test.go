package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Hello world\nLine 2"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("caf\xc3\xa9"), ".MD")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainBOM(t *testing.T) {
	e := NewExtractor()
	got, _ := e.ExtractBytes([]byte("\xef\xbb\xbfhello"), ".txt")
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_latin1Fallback(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("caf\xe9 cr\xe8me"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "café crème" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_unknownTextExtension(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("raw content"), ".xyz")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "raw content" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_unknownBinary(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte{0x7f, 'E', 'L', 'F', 0, 0, 1}, ".bin")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excelMultipleSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "first")
	if _, err := f.NewSheet("Prices"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Prices", "A1", "second")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Sheet1:\nfirst\n\nPrices:\nsecond" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	if _, err := NewExtractor().Extract("/nonexistent/path/file.txt"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func zipOf(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func docxBody(text string) string {
	return `<w:document><w:body><w:p w:rsidR="00AB"><w:r><w:t>` + text + `</w:t></w:r><w:r><w:t xml:space="preserve"> more &amp; text</w:t></w:r></w:p></w:body></w:document>`
}

func TestExtractBytes_docx(t *testing.T) {
	content := zipOf(t, map[string]string{"word/document.xml": docxBody("Searchable docx")}, "word/document.xml")
	got, err := NewExtractor().ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Searchable docx more & text" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxContentTypes(t *testing.T) {
	for name, override := range map[string]string{
		"partNameFirst":    `<Override PartName="/word/document2.xml" ContentType="` + docxMainContentType + `"/>`,
		"contentTypeFirst": `<Override ContentType="` + docxMainContentType + `" PartName="/word/document2.xml"/>`,
	} {
		t.Run(name, func(t *testing.T) {
			files := map[string]string{
				contentTypesPath:     `<Types>` + override + `</Types>`,
				"word/document2.xml": docxBody("custom path"),
			}
			content := zipOf(t, files, contentTypesPath, "word/document2.xml")
			got, err := NewExtractor().ExtractBytes(content, ".docx")
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != "custom path more & text" {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestExtractBytes_docxMissingBody(t *testing.T) {
	content := zipOf(t, map[string]string{"other.xml": "<x/>"}, "other.xml")
	if _, err := NewExtractor().ExtractBytes(content, ".docx"); err == nil {
		t.Error("expected error when word/document.xml is missing")
	}
}

func TestExtractBytes_pptxSlideOrder(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	files := map[string]string{
		"ppt/slides/slide10.xml": slide("Tenth"),
		"ppt/slides/slide2.xml":  slide("Second"),
		"ppt/slides/slide1.xml":  slide("First"),
		"ppt/slides/_rels/slide1.xml.rels": "<Relationships/>",
	}
	content := zipOf(t, files, "ppt/slides/slide10.xml", "ppt/slides/slide2.xml", "ppt/slides/slide1.xml", "ppt/slides/_rels/slide1.xml.rels")
	got, err := NewExtractor().ExtractBytes(content, ".pptx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "First Second Tenth" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_pptxNotZip(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("not a zip"), ".pptx"); err == nil {
		t.Error("expected error for non-zip pptx")
	}
}

func TestExtractBytes_odp(t *testing.T) {
	xml := `<office:document-content><office:automatic-styles><style:style/></office:automatic-styles><office:body><draw:page><draw:text-box><text:h>Heading</text:h><text:p>Hello <text:span text:style-name="T1">world</text:span></text:p></draw:text-box></draw:page></office:body></office:document-content>`
	content := zipOf(t, map[string]string{"content.xml": xml}, "content.xml")
	got, err := NewExtractor().ExtractBytes(content, ".odp")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Heading\nHello world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_ods(t *testing.T) {
	xml := `<office:body><table:table><table:table-row><table:table-cell><text:p>Cell &amp; A</text:p></table:table-cell><table:table-cell><text:p>Cell B</text:p></table:table-cell></table:table-row></table:table></office:body>`
	content := zipOf(t, map[string]string{"content.xml": xml}, "content.xml")
	got, err := NewExtractor().ExtractBytes(content, ".ods")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Cell & A\nCell B" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_odfContentNotFound(t *testing.T) {
	content := zipOf(t, map[string]string{"meta.xml": "<x/>"}, "meta.xml")
	if _, err := NewExtractor().ExtractBytes(content, ".ods"); err == nil {
		t.Error("expected error when content.xml is missing")
	}
}

func TestSupportedAndMimeType(t *testing.T) {
	if !Supported(".PDF") || !Supported(".md") || Supported(".exe") {
		t.Error("Supported returned unexpected result")
	}
	if MimeType(".docx") != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Errorf("docx mime: %s", MimeType(".docx"))
	}
	if MimeType(".unknown") != "text/plain" {
		t.Errorf("fallback mime: %s", MimeType(".unknown"))
	}
}
