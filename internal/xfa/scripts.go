package xfa

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Script is one FormCalc script found in an XFA form
type Script struct {
	Index   int    `json:"index"`
	SomPath string `json:"som_path"`       // Named ancestors, e.g. form1.page1.total
	Event   string `json:"event"`          // calculate, validate, variables or the event activity
	Ref     string `json:"ref,omitempty"`  // Event source for <event ref="...">
	Name    string `json:"name,omitempty"` // Script object name inside <variables>
	Line    int    `json:"line"`
	Source  string `json:"source"`
}

// Extraction is the result of scanning an XDP document
type Extraction struct {
	Scripts []Script
	Skipped int // Scripts in other languages
}

type frame struct {
	local    string
	name     string
	activity string
	ref      string
}

// ExtractScripts scans an XDP document for FormCalc scripts. A script
// without a contentType is FormCalc, the XFA default.
func ExtractScripts(xdp []byte) (*Extraction, error) {
	decoder := xml.NewDecoder(bytes.NewReader(xdp))
	decoder.Strict = false

	out := &Extraction{Scripts: []Script{}}
	var stack []frame
	var source strings.Builder
	inScript, scriptLine := false, 0

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XFA XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f := frame{local: t.Name.Local}
			for _, attr := range t.Attr {
				switch attr.Name.Local {
				case "name":
					f.name = attr.Value
				case "activity":
					f.activity = attr.Value
				case "ref":
					f.ref = attr.Value
				case "contentType":
					if t.Name.Local == "script" && !isFormCalc(attr.Value) {
						f.local = "foreign-script"
					}
				}
			}
			stack = append(stack, f)

			switch f.local {
			case "script":
				inScript = true
				scriptLine, _ = decoder.InputPos()
				source.Reset()
			case "foreign-script":
				out.Skipped++
			}

		case xml.CharData:
			if inScript {
				source.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.local != "script" || !inScript {
				continue
			}
			inScript = false

			script := Script{
				Index:   len(out.Scripts),
				SomPath: somPath(stack),
				Name:    top.name,
				Line:    scriptLine,
				Source:  source.String(),
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				script.Event = parent.local
				if parent.local == "event" {
					script.Event = parent.activity
					script.Ref = parent.ref
				}
			}
			out.Scripts = append(out.Scripts, script)
		}
	}

	return out, nil
}

func isFormCalc(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return ct == "" || strings.Contains(ct, "formcalc")
}

// somPath joins the names of the named ancestors
func somPath(stack []frame) string {
	var names []string
	for _, f := range stack {
		if f.name != "" {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ".")
}
