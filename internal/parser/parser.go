// Package parser reconstructs the tabular structure of construction
// budget documents ("presupuestos de obra") from flattened page text.
//
// The table structure is only encoded visually in the PDF; after text
// extraction a row may survive as one line, be split into a
// key+description line followed by a values line, or wrap its
// description over several continuation lines. The parser classifies
// each line by lexical shape and folds the stream through per-document
// state to recover the rows.
package parser

import (
	"strings"

	"github.com/osroca/presupuesto-extractor/internal/models"
)

// Parser extracts budget line items from per-page document text. The
// zero value is ready to use; all state lives in the per-call context,
// so a Parser is safe for concurrent use across documents.
type Parser struct{}

// docContext carries the cross-line state for one document: the active
// section/subsection, title and date, an open split item awaiting its
// values line, and whether the last emitted item may still absorb
// continuation text.
type docContext struct {
	secCode, secName string
	subCode, subName string
	title, dateISO   string

	pendingCode  string
	pendingDesc  []string
	appendToLast bool
}

func (c *docContext) clearPending() {
	c.pendingCode = ""
	c.pendingDesc = nil
}

// Parse processes the pages of one document in order and returns the
// extracted items plus the lines that looked like item keys but could
// not be resolved. It never fails: malformed lines degrade to
// continuation text, unmatched lines, or silent drops.
func (p *Parser) Parse(pages []string, sourceFile string) *models.Document {
	doc := &models.Document{SourceFile: sourceFile}
	ctx := &docContext{}

	for i, page := range pages {
		lines := splitLines(page)

		// Title and date live on the cover or its continuation; only the
		// first two pages are scanned, first match wins.
		if i < 2 {
			for _, ln := range lines {
				if ctx.title == "" && strings.HasPrefix(strings.ToLower(ln), "presupuesto") {
					ctx.title = ln
				}
				if ctx.dateISO == "" {
					ctx.dateISO = parseSpanishDate(ln)
				}
			}
		}

		for _, ln := range lines {
			p.consumeLine(ctx, doc, ln)
		}
	}

	// A pending split item still open here never got its values line;
	// it is dropped, not emitted and not reported.
	doc.Title = ctx.title
	doc.Date = ctx.dateISO
	return doc
}

// consumeLine advances the extraction state machine by one line. The
// classifiers run in fixed priority order; exactly one branch applies.
func (p *Parser) consumeLine(ctx *docContext, doc *models.Document, ln string) {
	// Boilerplate resets the pending state and breaks continuation
	// absorption, but never contributes to output.
	if isNoise(ln) {
		ctx.clearPending()
		ctx.appendToLast = false
		return
	}

	if sec := matchSection(ln); sec != nil {
		if strings.Contains(sec.code, ".") {
			ctx.subCode, ctx.subName = sec.code, sec.name
		} else {
			ctx.secCode, ctx.secName = sec.code, sec.name
			ctx.subCode, ctx.subName = "", ""
		}
		ctx.clearPending()
		ctx.appendToLast = false
		return
	}

	if m := matchItemLine(ln); m != nil {
		doc.Items = append(doc.Items, ctx.newItem(doc, m.code, m.desc, m.unit, m.quantity, m.price, m.total))
		ctx.clearPending()
		ctx.appendToLast = true
		return
	}

	// A key with no numeric columns hypothesizes a split item; nothing
	// is emitted until a values line confirms it.
	if m := matchCodeOnly(ln); m != nil {
		ctx.pendingCode = m.code
		ctx.pendingDesc = nil
		if m.desc != "" {
			ctx.pendingDesc = []string{m.desc}
		}
		ctx.appendToLast = false
		return
	}

	if m := matchValuesLine(ln); m != nil && ctx.pendingCode != "" {
		desc := strings.Join(ctx.pendingDesc, " ")
		doc.Items = append(doc.Items, ctx.newItem(doc, ctx.pendingCode, desc, m.unit, m.quantity, m.price, m.total))
		ctx.clearPending()
		ctx.appendToLast = true
		return
	}

	// Nothing structural matched. The probes below decide between three
	// outcomes: absorb the line into the last item's description, record
	// it for manual review, or drop it. The branch conditions are
	// deliberately kept exactly as tuned against real documents.
	looks := looksLikeCode(ln)
	fullItem := matchItemLine(ln) != nil
	codeOnly := matchCodeOnly(ln) != nil
	threeNums := endsWithThreeNumbers(ln)

	if ctx.appendToLast && len(doc.Items) > 0 && matchSection(ln) == nil {
		last := &doc.Items[len(doc.Items)-1]
		if looks && !fullItem && !codeOnly && !threeNums {
			last.Description = strings.TrimSpace(last.Description + " " + ln)
			return
		}
		if !looks && !fullItem {
			last.Description = strings.TrimSpace(last.Description + " " + ln)
			return
		}
	}

	// Free text while a split item is open extends its description.
	if ctx.pendingCode != "" && !looks && !fullItem {
		ctx.pendingDesc = append(ctx.pendingDesc, ln)
		return
	}

	if looks && !fullItem && !codeOnly {
		doc.Unmatched = append(doc.Unmatched, ln)
		ctx.clearPending()
		ctx.appendToLast = false
		return
	}

	// Stray mid-table noise; dropped.
}

// newItem builds an item from a match plus the current document context.
// Section, subsection, title and date are captured at creation and never
// revised, even if the context changes later in the document.
func (c *docContext) newItem(doc *models.Document, code, desc, unit, quantity, price, total string) models.Item {
	return models.Item{
		Section:        c.secCode,
		SectionName:    c.secName,
		Subsection:     c.subCode,
		SubsectionName: c.subName,
		Code:           code,
		Description:    strings.TrimSpace(desc),
		Unit:           strings.TrimSpace(unit),
		Quantity:       parseAmount(quantity),
		UnitPrice:      parseAmount(price),
		Total:          parseAmount(total),
		Title:          c.title,
		Date:           c.dateISO,
		SourceFile:     doc.SourceFile,
	}
}

// splitLines breaks a page blob into trimmed, non-empty lines.
func splitLines(page string) []string {
	var lines []string
	for _, ln := range strings.Split(page, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}
