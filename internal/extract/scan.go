package extract

import (
	"regexp"
	"sort"
	"strings"
)

// anchorHit is one anchor occurrence in the compacted text. start..end covers
// the anchor keyword plus any trailing separator; the field's value begins at
// end.
type anchorHit struct {
	field string
	start int
	end   int
}

// compiledField pairs a field spec with its anchor regexp. Anchors are joined
// into one alternation, longest first, so "member status" wins over "status"
// at the same position.
type compiledField struct {
	spec fieldSpec
	re   *regexp.Regexp
}

func compileFields(specs []fieldSpec) []compiledField {
	out := make([]compiledField, 0, len(specs))
	for _, spec := range specs {
		anchors := make([]string, len(spec.anchors))
		copy(anchors, spec.anchors)
		sort.Slice(anchors, func(i, j int) bool { return len(anchors[i]) > len(anchors[j]) })
		for i, a := range anchors {
			anchors[i] = regexp.QuoteMeta(a)
		}
		expr := `(?i)\b(?:` + strings.Join(anchors, "|") + `)\b[\s:#=\-]*`
		out = append(out, compiledField{spec: spec, re: regexp.MustCompile(expr)})
	}
	return out
}

// scan locates every anchor occurrence, resolves overlaps (leftmost wins;
// longer anchors beat shorter ones at the same position), and captures one
// value per field. A field's capture runs from its anchor to the next
// surviving anchor of any field, then is cut at the field's stop punctuation.
// Anchors past the first occurrence of a field still act as capture
// boundaries, so no capture ever crosses into a region claimed by another
// anchor.
func scan(fields []compiledField, text string) map[string]string {
	var hits []anchorHit
	for _, f := range fields {
		for _, loc := range f.re.FindAllStringIndex(text, -1) {
			hits = append(hits, anchorHit{field: f.spec.name, start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].end > hits[j].end
	})

	kept := hits[:0]
	lastEnd := -1
	for _, h := range hits {
		if h.start < lastEnd {
			continue
		}
		kept = append(kept, h)
		lastEnd = h.end
	}

	specsByName := make(map[string]fieldSpec, len(fields))
	for _, f := range fields {
		specsByName[f.spec.name] = f.spec
	}

	values := make(map[string]string, len(kept))
	for i, h := range kept {
		if _, claimed := values[h.field]; claimed {
			continue
		}
		end := len(text)
		if i+1 < len(kept) {
			end = kept[i+1].start
		}
		span := text[h.end:end]
		spec := specsByName[h.field]
		if cut := strings.IndexAny(span, spec.stop); cut >= 0 {
			span = span[:cut]
		}
		span = strings.TrimSpace(span)
		if spec.pattern != nil {
			span = spec.pattern.FindString(span)
		}
		if spec.normalize != nil {
			span = spec.normalize(span)
		}
		if span != "" {
			values[h.field] = span
		}
	}
	return values
}
