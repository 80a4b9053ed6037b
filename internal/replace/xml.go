package replace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// replaceXML parses the document into an element tree and substitutes
// the search text in element text, tail text and attribute values,
// walking in document order. Tag names are never touched. The result is
// written back with an XML declaration and UTF-8 encoding.
func replaceXML(req Request) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(req.SourcePath); err != nil {
		return "", &CorruptInputError{Format: FormatXML, Err: err}
	}

	root := doc.Root()
	if root == nil {
		return "", &CorruptInputError{Format: FormatXML, Err: errors.New("document has no root element")}
	}

	replaceInElement(root, req)
	ensureDeclaration(doc)

	outPath := outputPath(req.SourcePath)
	if err := doc.WriteToFile(outPath); err != nil {
		return "", fmt.Errorf("writing xml output: %w", err)
	}

	return outPath, nil
}

func replaceInElement(e *etree.Element, req Request) {
	if text := e.Text(); strings.Contains(text, req.Search) {
		e.SetText(req.apply(text))
	}

	if tail := e.Tail(); strings.Contains(tail, req.Search) {
		e.SetTail(req.apply(tail))
	}

	for i := range e.Attr {
		if strings.Contains(e.Attr[i].Value, req.Search) {
			e.Attr[i].Value = req.apply(e.Attr[i].Value)
		}
	}

	for _, child := range e.ChildElements() {
		replaceInElement(child, req)
	}
}

// ensureDeclaration prepends an XML declaration if the source document
// did not carry one.
func ensureDeclaration(doc *etree.Document) {
	for _, token := range doc.Child {
		if pi, ok := token.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}

	pi := doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.RemoveChild(pi)
	doc.InsertChildAt(0, pi)
}
