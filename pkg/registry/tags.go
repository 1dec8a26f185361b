package registry

import "regexp"

var referenceTag = regexp.MustCompile(`\{%-?\s*(extends|include)\s+(?:"([^"]*)"|'([^']*)'|(\S+))`)

// scanReferences lists the identifiers src extends or includes by literal
// name. dynamic reports an include whose target is only known at render
// time; pongo2 compiles such targets during execution through the shared
// template set.
func scanReferences(src string) (refs []string, dynamic bool) {
	for _, m := range referenceTag.FindAllStringSubmatch(src, -1) {
		switch {
		case m[2] != "":
			refs = append(refs, normalizeName(m[2]))
		case m[3] != "":
			refs = append(refs, normalizeName(m[3]))
		default:
			dynamic = true
		}
	}
	return refs, dynamic
}

// exclusiveTemplates flags every identifier that reaches a dynamic include,
// directly or through the templates it extends or includes.
func exclusiveTemplates(sources map[string]string) map[string]bool {
	refs := make(map[string][]string, len(sources))
	flagged := make(map[string]bool)
	for name, src := range sources {
		r, dynamic := scanReferences(src)
		refs[name] = r
		if dynamic {
			flagged[name] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for name, targets := range refs {
			if flagged[name] {
				continue
			}
			for _, target := range targets {
				if flagged[target] {
					flagged[name] = true
					changed = true
					break
				}
			}
		}
	}
	return flagged
}
