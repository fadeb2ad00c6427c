package pdf

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/wb-go/wbf/retry"
	"golang.org/x/net/html"
)

// WordToPDF extracts the paragraphs of a .docx file and re-lays them out as
// a flowing document. Legacy .doc files are accepted at the boundary but
// rejected here by the parser.
func (p *Processor) WordToPDF(input string) (string, error) {
	out := p.out.OutputFile("word_to_pdf", ".pdf")

	f, err := os.Open(input)
	if err != nil {
		return "", fmt.Errorf("word to PDF conversion failed: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("word to PDF conversion failed: %w", err)
	}

	src, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("word to PDF conversion failed: %w", err)
	}

	doc := newDocBuilder()
	for _, item := range src.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(para.String()); text != "" {
			doc.paragraph(text)
		}
	}

	if err := doc.save(out); err != nil {
		return "", fmt.Errorf("word to PDF conversion failed: %w", err)
	}
	return out, nil
}

// PowerPointToPDF extracts the text runs of each slide and re-lays them out
// one slide per page, each headed by its slide number.
func (p *Processor) PowerPointToPDF(input string) (string, error) {
	out := p.out.OutputFile("ppt_to_pdf", ".pdf")

	slides, err := readSlideTexts(input)
	if err != nil {
		return "", fmt.Errorf("powerpoint to PDF conversion failed: %w", err)
	}

	doc := newDocBuilder()
	for i, texts := range slides {
		doc.heading(fmt.Sprintf("Slide %d", i+1), 1)
		doc.spacer(8)
		for _, text := range texts {
			doc.paragraph(text)
		}
		if i < len(slides)-1 {
			doc.pageBreak()
		}
	}

	if err := doc.save(out); err != nil {
		return "", fmt.Errorf("powerpoint to PDF conversion failed: %w", err)
	}
	return out, nil
}

// HTMLToPDF flattens the markup into headings and paragraphs and re-lays
// them out as a flowing document. Structure is preserved, styling is not.
func (p *Processor) HTMLToPDF(content string) (string, error) {
	out := p.out.OutputFile("html_to_pdf", ".pdf")

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("HTML to PDF conversion failed: %w", err)
	}

	doc := newDocBuilder()
	for _, block := range htmlBlocks(root) {
		if block.heading > 0 {
			doc.heading(block.text, block.heading)
		} else {
			doc.paragraph(block.text)
		}
	}

	if err := doc.save(out); err != nil {
		return "", fmt.Errorf("HTML to PDF conversion failed: %w", err)
	}
	return out, nil
}

// FetchHTML downloads the page body from url, retrying per the configured
// strategy.
func (p *Processor) FetchHTML(ctx context.Context, url string) (string, error) {
	var body []byte

	err := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := p.httpcli.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}, p.opts.FetchStrategy)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	return string(body), nil
}

// block is one flattened piece of HTML content.
type block struct {
	heading int // 1..6 for h1..h6, 0 for a plain paragraph
	text    string
}

// htmlBlocks walks the parse tree and flattens it into headings and
// paragraphs. Script and style subtrees are dropped; any block-level element
// boundary starts a new paragraph.
func htmlBlocks(root *html.Node) []block {
	var blocks []block
	var current strings.Builder
	level := 0

	flush := func() {
		text := strings.Join(strings.Fields(current.String()), " ")
		current.Reset()
		if text != "" {
			blocks = append(blocks, block{heading: level, text: text})
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteByte(' ')
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			case "br":
				flush()
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				level = int(n.Data[1] - '0')
				defer func() { flush(); level = 0 }()
			case "p", "div", "li", "tr", "section", "article", "blockquote":
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	flush()

	return blocks
}

// readSlideTexts opens the pptx container and returns the text runs per
// slide, in slide order. There is no maintained open-source pptx reader in
// Go, so the OOXML slide parts are read directly.
func readSlideTexts(path string) ([][]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presentation: %w", err)
	}
	defer archive.Close()

	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile

	for _, f := range archive.File {
		name := f.Name
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
		num, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{num: num, file: f})
	}

	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides found in presentation")
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	result := make([][]string, 0, len(slides))
	for _, s := range slides {
		r, err := s.file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open slide %d: %w", s.num, err)
		}
		texts, err := parseSlideTexts(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse slide %d: %w", s.num, err)
		}
		result = append(result, texts)
	}

	return result, nil
}

// parseSlideTexts extracts one string per slide paragraph, concatenating the
// paragraph's text runs.
func parseSlideTexts(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var texts []string
	var paragraph strings.Builder
	inRun := false
	depth := 0 // nesting depth of <a:p> elements

	endParagraph := func() {
		if text := strings.TrimSpace(paragraph.String()); text != "" {
			texts = append(texts, text)
		}
		paragraph.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				depth++
			case "t":
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if depth > 0 {
					depth--
					if depth == 0 {
						endParagraph()
					}
				}
			case "t":
				inRun = false
			}
		case xml.CharData:
			if inRun {
				paragraph.Write(t)
			}
		}
	}
	endParagraph()

	return texts, nil
}
