/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dom.go
Description: DOM-level helpers built on goquery. Provides first-heading
extraction, a tag-topology hash for the optional style fingerprint dimension,
link href harvesting, and form discovery from raw page HTML.
*/

package browser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// FormField is one fillable control discovered inside a form.
type FormField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder,omitempty"`
	Label       string `json:"label,omitempty"`
}

// FormCandidate is a form grouping with at least one input or submit control.
type FormCandidate struct {
	Name   string
	Fields []FormField
	Submit model.ElementDescriptor
}

// FirstHeading returns the trimmed text of the first h1, or "".
func FirstHeading(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// DOMStructureHash hashes the tag topology of the document body. Text and
// attributes are excluded so the hash tracks layout structure only.
func DOMStructureHash(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		writeDOMTopology(&sb, sel, 0)
	})
	if sb.Len() == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:16]
}

func writeDOMTopology(sb *strings.Builder, sel *goquery.Selection, depth int) {
	if depth > 10 {
		return
	}
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		sb.WriteString("(")
		sb.WriteString(goquery.NodeName(child))
		writeDOMTopology(sb, child, depth+1)
		sb.WriteString(")")
	})
}

// LinkHrefs maps visible link text to href for every anchor carrying one.
// Used to enrich accessibility-tree links, which do not expose targets.
func LinkHrefs(html string) map[string]string {
	hrefs := map[string]string{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return hrefs
	}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if text != "" && href != "" {
			if _, seen := hrefs[text]; !seen {
				hrefs[text] = href
			}
		}
	})
	return hrefs
}

// ExtractForms discovers form groupings with at least one input or submit
// control. Hidden and submit inputs are not fillable fields; the submit
// control becomes the trigger descriptor.
func ExtractForms(html string) []FormCandidate {
	var forms []FormCandidate
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return forms
	}

	doc.Find("form").Each(func(i int, formSel *goquery.Selection) {
		candidate := FormCandidate{
			Name: formAttrName(formSel, i),
		}

		formSel.Find("input, textarea, select").Each(func(_ int, inputSel *goquery.Selection) {
			inputType, _ := inputSel.Attr("type")
			if inputType == "" {
				inputType = "text"
			}
			if inputType == "hidden" || inputType == "submit" || inputType == "button" {
				return
			}
			name, _ := inputSel.Attr("name")
			placeholder, _ := inputSel.Attr("placeholder")
			candidate.Fields = append(candidate.Fields, FormField{
				Name:        name,
				Type:        inputType,
				Placeholder: placeholder,
			})
		})

		candidate.Submit = findSubmit(formSel)
		if len(candidate.Fields) > 0 || candidate.Submit.HasLocator() {
			forms = append(forms, candidate)
		}
	})
	return forms
}

func formAttrName(sel *goquery.Selection, index int) string {
	if name, ok := sel.Attr("name"); ok && name != "" {
		return name
	}
	if id, ok := sel.Attr("id"); ok && id != "" {
		return id
	}
	return fmt.Sprintf("form_%d", index)
}

func findSubmit(formSel *goquery.Selection) model.ElementDescriptor {
	descriptor := model.ElementDescriptor{ElementType: "button", Locators: map[string]string{}}

	submit := formSel.Find("button[type='submit'], input[type='submit'], button").First()
	if submit.Length() == 0 {
		return model.ElementDescriptor{}
	}

	text := strings.TrimSpace(submit.Text())
	if text == "" {
		text, _ = submit.Attr("value")
	}
	if testID, ok := submit.Attr("data-testid"); ok && testID != "" {
		descriptor.Locators[model.LocatorTestID] = testID
	}
	if text != "" {
		descriptor.Locators[model.LocatorRole] = "button:" + text
		descriptor.Locators[model.LocatorText] = text
		descriptor.Name = text
	}
	if name, ok := submit.Attr("name"); ok && name != "" {
		descriptor.Locators[model.LocatorName] = name
	}
	if !descriptor.HasLocator() {
		return model.ElementDescriptor{}
	}
	return descriptor
}
