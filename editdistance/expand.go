package editdistance

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DNA is the alphabet barcodes are expanded over.
const DNA = "ACGTN"

// Expand returns barcode and every string at most maxDist away from it
// under m whose edits only involve bytes of alphabet. Positions holding a
// byte outside alphabet, such as the '+' joining dual index barcodes, are
// never substituted or deleted. Levenshtein also inserts alphabet bytes at
// every rune boundary.
//
// The set grows roughly as (len(barcode)*len(alphabet))^maxDist.
func Expand(barcode string, maxDist int, m Metric, alphabet string) mapset.Set[string] {
	seen := mapset.NewThreadUnsafeSet[string]()
	if maxDist < 0 {
		return seen
	}
	seen.Add(barcode)

	frontier := []string{barcode}
	for d := 0; d < maxDist && len(frontier) > 0; d++ {
		next := make([]string, 0, len(frontier)*len(barcode)*len(alphabet))
		for _, s := range frontier {
			for _, e := range singleEdits(s, m, alphabet) {
				if seen.Add(e) {
					next = append(next, e)
				}
			}
		}
		frontier = next
	}
	return seen
}

// singleEdits lists the strings one edit away from s. It may repeat a
// string; Expand dedupes.
func singleEdits(s string, m Metric, alphabet string) []string {
	var out []string
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			continue
		}
		for j := 0; j < len(alphabet); j++ {
			if alphabet[j] != s[i] {
				out = append(out, s[:i]+alphabet[j:j+1]+s[i+1:])
			}
		}
		if m == Levenshtein {
			out = append(out, s[:i]+s[i+1:])
		}
	}
	if m != Levenshtein {
		return out
	}

	insert := func(at int) {
		for j := 0; j < len(alphabet); j++ {
			out = append(out, s[:at]+alphabet[j:j+1]+s[at:])
		}
	}
	for at := range s {
		insert(at)
	}
	insert(len(s))
	return out
}
