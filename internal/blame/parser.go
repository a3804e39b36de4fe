// Package blame parses the machine-readable output of `git blame
// --porcelain` into per-line attribution records.
//
// The porcelain format emits full commit metadata only the first time a
// commit appears in the stream; later lines attributed to the same commit
// carry only the bare header. The parser keeps a per-commit metadata cache
// so those later lines inherit the earlier author/date/summary. Known
// limitation: if metadata for a commit arrives only after a header for that
// commit has already been emitted with placeholders, records emitted before
// the metadata keep the placeholders. This mirrors the protocol's own
// first-emission contract and does not occur in well-formed git output.
package blame

import (
	"bufio"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Line attributes one line of the blamed file to the commit that last
// changed it. Number is 1-based and counts lines of the current file.
type Line struct {
	Number     int
	CommitHash string
	Author     string
	Date       time.Time
	Summary    string
}

// headerRe matches `<40-hex-hash> <origLine> <finalLine>[ <groupCount>]`.
var headerRe = regexp.MustCompile(`^([0-9a-f]{40}) (\d+) (\d+)( \d+)?$`)

type commitMeta struct {
	author  string
	mail    string
	date    time.Time
	summary string
}

// Parse turns raw porcelain blame text into records ordered by line number.
// Malformed lines lose only their own attribution, never the whole parse.
func Parse(raw string) []Line {
	cache := make(map[string]*commitMeta)
	var out []Line

	var current *commitMeta // metadata target for the most recent header
	var pending *Line       // record started by the most recent header

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		text := sc.Text()

		if m := headerRe.FindStringSubmatch(text); m != nil {
			hash := m[1]
			final, err := strconv.Atoi(m[3])
			if err != nil || final < 1 {
				continue
			}
			meta, seen := cache[hash]
			if !seen {
				meta = &commitMeta{author: "Unknown", date: time.Now()}
				cache[hash] = meta
			}
			out = append(out, Line{
				Number:     final,
				CommitHash: hash,
				Author:     meta.author,
				Date:       meta.date,
				Summary:    meta.summary,
			})
			current = meta
			pending = &out[len(out)-1]
			continue
		}

		// Content lines are tab-prefixed and carry no metadata.
		if strings.HasPrefix(text, "\t") {
			continue
		}
		if current == nil {
			continue
		}

		key, value, found := strings.Cut(text, " ")
		if !found {
			// Flag lines like "boundary" have no value; nothing to record.
			continue
		}
		switch key {
		case "author":
			current.author = value
			pending.Author = value
		case "author-mail":
			current.mail = strings.Trim(value, "<>")
		case "author-time":
			epoch, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			current.date = time.Unix(epoch, 0)
			pending.Date = current.date
		case "summary":
			current.summary = value
			pending.Summary = value
		}
	}

	// Porcelain output follows diff-hunk order, not document order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
