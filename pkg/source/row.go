package source

import (
	"strconv"
	"strings"
)

// Row is one name-indexed record from a source table. All values come off
// the wire as strings; typed access goes through the helpers.
type Row map[string]string

func (r Row) Get(column string) string {
	return r[column]
}

// Int parses the named column as an integer. Shamela files store ids and
// page numbers as whole numbers but some exports render them as "3.0".
func (r Row) Int(column string) (int, bool) {
	v := strings.TrimSpace(r[column])
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// LongestValue returns the length in runes of the longest value in the row.
// The discoverer uses it to sniff body-text tables.
func (r Row) LongestValue() int {
	longest := 0
	for _, v := range r {
		if n := len([]rune(v)); n > longest {
			longest = n
		}
	}
	return longest
}
