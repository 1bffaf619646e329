package matching

import (
	"regexp"
	"strings"
)

var bracesPattern = regexp.MustCompile(`\{\{([^}]*)\}\}`)

// ExtractQueries returns the non-blank {{...}} requests in body, in order. A limit of
// 0 or less returns all of them.
func ExtractQueries(body string, limit int) []string {
	var queries []string
	for _, m := range bracesPattern.FindAllStringSubmatch(body, -1) {
		q := strings.TrimSpace(m[1])
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if limit > 0 && len(queries) == limit {
			break
		}
	}
	return queries
}
