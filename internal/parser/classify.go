package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Token shapes shared by the classifiers. A budget table row is
//
//	CLAVE  DESCRIPCIÓN  UNIDAD  CANTIDAD  P.UNITARIO  TOTAL
//
// but the PDF flattening can split it after the description or wrap the
// description over several lines, so each shape gets its own matcher.
const (
	amountToken = `[\d.,]+`
	unitToken   = `[A-Za-zÁÉÍÓÚáéíóúñÑº°/.\-²³0-9]{1,16}`

	// Item keys: either the prefixed house style ("TDC-EST-", "TDC-ALB-01"
	// resolves through the generic shape) or one/two groups of short
	// uppercase alphanumeric segments joined by . - /
	keyPrefixed = `TDC-[A-Z]{1,3}(?:-[A-Z]{1,3})?-?`
	keyGroup    = `[A-Z0-9]{1,6}(?:[.\-/][A-Z0-9]{1,6})*`
)

var (
	// "3 Albañilería 152,340.00" / "3.2 Muros 45,120.00"
	sectionPattern = regexp.MustCompile(`^(\d{1,2}(?:\.\d{1,2})?)\s+(.+?)\s+(` + amountToken + `)$`)

	// Unit-of-measure words never appear in section names; they mark a
	// misread item line instead.
	unitWordPattern = regexp.MustCompile(`(?i)\b(m2|m3|cm|mm|ml|kg|kg/m2|kg/m3|pza\.?|pz\.?|pieza|lote|vj|lts?|litros?)\b`)

	// Times of day ("9:30") shaped like section codes.
	digitColonDigit = regexp.MustCompile(`\d\s*:\s*\d`)

	noisePrefixPattern = regexp.MustCompile(`(?i)^(subtotal|total|iva|notas|ppro|ppto)`)
	pageFooterPattern  = regexp.MustCompile(`^\d+/\d+$`)

	// Key split patterns, in the order a match is preferred: prefixed
	// house key, two generic groups, one generic group. Each requires
	// trailing whitespace, i.e. the key cannot be the whole line.
	keySplitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(` + keyPrefixed + `)\s+`),
		regexp.MustCompile(`^(` + keyGroup + `\s+` + keyGroup + `)\s+`),
		regexp.MustCompile(`^(` + keyGroup + `)\s+`),
	}

	// Cheap probe: does the line start with anything key-shaped at all?
	// A second key group always sits after whitespace, which is already a
	// word boundary, so probing the first group alone is enough.
	keyProbePattern = regexp.MustCompile(`^(?:` + keyPrefixed + `|` + keyGroup + `)\b`)

	// Rest of an item line once the key is split off:
	// DESCRIPCIÓN UNIDAD CANT P.U. TOTAL [ignorable tail]
	itemTailPattern = regexp.MustCompile(
		`^(.*?)\s+(` + unitToken + `)\s+(` + amountToken + `)\s+(` + amountToken + `)\s+(` + amountToken + `)(?:\s+.*)?$`)

	// "m3 25.00 2,000.00 50,000.00" with nothing else on the line.
	valuesPattern = regexp.MustCompile(
		`^(` + unitToken + `)\s+(` + amountToken + `)\s+(` + amountToken + `)\s+(` + amountToken + `)$`)

	threeNumbersAtEnd = regexp.MustCompile(amountToken + `\s+` + amountToken + `\s+` + amountToken + `\s*$`)

	upperLetterPattern = regexp.MustCompile(`[A-Z]`)
)

// sectionMatch is a section ("3") or subsection ("3.2") header. The
// trailing running total on the header line is matched but not kept.
type sectionMatch struct {
	code string
	name string
}

// itemMatch is a complete item on one physical line. Amount fields keep
// the raw text; parseAmount is applied at emission.
type itemMatch struct {
	code     string
	desc     string
	unit     string
	quantity string
	price    string
	total    string
}

// codeOnlyMatch is the first half of a split item: key plus the start of
// the description, with the numeric columns expected on a later line.
type codeOnlyMatch struct {
	code string
	desc string
}

// valuesMatch is the second half of a split item.
type valuesMatch struct {
	unit     string
	quantity string
	price    string
	total    string
}

// matchSection classifies a line as a section/subsection header, or nil.
func matchSection(line string) *sectionMatch {
	line = strings.TrimSpace(line)
	if digitColonDigit.MatchString(line) {
		return nil
	}
	m := sectionPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	code := m[1]
	name := strings.TrimSpace(m[2])
	for _, part := range strings.Split(code, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 99 {
			return nil
		}
	}
	if utf8.RuneCountInString(name) < 3 || unitWordPattern.MatchString(name) {
		return nil
	}
	return &sectionMatch{code: code, name: name}
}

// isNoise reports whether the line is boilerplate: the column-header
// banner, letterhead, subtotal/total/IVA/notes rows, or page footers.
func isNoise(line string) bool {
	ln := strings.ToLower(line)
	if strings.HasPrefix(ln, "clave descripción") || strings.Contains(ln, "osroca") {
		return true
	}
	if noisePrefixPattern.MatchString(ln) {
		return true
	}
	if strings.HasPrefix(ln, "página ") || pageFooterPattern.MatchString(ln) {
		return true
	}
	return false
}

// keySplits returns the possible (key, rest-of-line) splits of a line,
// most specific first. Generic key groups must each contain a letter;
// plain numbers are section codes or quantities, not item keys.
func keySplits(line string) []codeOnlyMatch {
	var splits []codeOnlyMatch
	for i, pat := range keySplitPatterns {
		loc := pat.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		code := line[loc[2]:loc[3]]
		if i > 0 && !eachGroupHasLetter(code) {
			continue
		}
		splits = append(splits, codeOnlyMatch{code: code, desc: line[loc[1]:]})
	}
	return splits
}

func eachGroupHasLetter(key string) bool {
	for _, group := range strings.Fields(key) {
		if !upperLetterPattern.MatchString(group) {
			return false
		}
	}
	return true
}

// matchItemLine classifies a line carrying a complete item: key,
// description, unit and the three numeric columns, optionally followed
// by ignorable trailing text.
func matchItemLine(line string) *itemMatch {
	for _, split := range keySplits(line) {
		m := itemTailPattern.FindStringSubmatch(split.desc)
		if m == nil {
			continue
		}
		return &itemMatch{
			code:     split.code,
			desc:     strings.TrimSpace(m[1]),
			unit:     strings.TrimSpace(m[2]),
			quantity: m[3],
			price:    m[4],
			total:    m[5],
		}
	}
	return nil
}

// matchCodeOnly classifies a line as key plus description fragment.
func matchCodeOnly(line string) *codeOnlyMatch {
	splits := keySplits(line)
	if len(splits) == 0 {
		return nil
	}
	s := splits[0]
	s.desc = strings.TrimSpace(s.desc)
	return &s
}

// matchValuesLine classifies a line holding only unit and the three
// numeric columns, the second half of a split item.
func matchValuesLine(line string) *valuesMatch {
	m := valuesPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return &valuesMatch{unit: strings.TrimSpace(m[1]), quantity: m[2], price: m[3], total: m[4]}
}

// looksLikeCode is a disambiguation probe: the line starts with a
// key-shaped token, whether or not the rest of the line resolves.
func looksLikeCode(line string) bool {
	m := keyProbePattern.FindString(line)
	return m != "" && upperLetterPattern.MatchString(m)
}

// endsWithThreeNumbers is a disambiguation probe for lines trailing off
// in three numeral groups.
func endsWithThreeNumbers(line string) bool {
	return threeNumbersAtEnd.MatchString(line)
}
