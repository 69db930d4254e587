// Package feed reads carousel entries from a text file, one entry per line,
// and follows the file for entries appended later.
//
// A line is either plain text or tab separated fields:
//
//	title
//	id<TAB>title
//	id<TAB>title<TAB>body
//
// A literal \n in the body is a line break. Lines without an id get one
// derived from their position and text, or a random one with WithUUIDs.
package feed

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

var ErrDuplicateID = errors.New("duplicate entry id")

type options struct {
	uuids    bool
	markdown bool
}

type Option func(*options)

// WithUUIDs gives entries without an explicit id a random UUID.
func WithUUIDs() Option {
	return func(o *options) {
		o.uuids = true
	}
}

// WithMarkdown renders entry bodies as markdown.
func WithMarkdown() Option {
	return func(o *options) {
		o.markdown = true
	}
}

// Feed is a loaded feed file.
type Feed struct {
	path    string
	opts    options
	entries []*Entry
	seen    map[string]struct{}
	// size is the byte offset following starts from.
	size int64
	line int
}

// Load parses every complete line of the file at path.
func Load(path string, opts ...Option) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	f := &Feed{
		path: path,
		seen: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&f.opts)
	}

	// A trailing partial line is left to the follower.
	var complete []byte
	if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
		complete = data[:i+1]
	}
	f.size = int64(len(complete))

	scanner := bufio.NewScanner(bytes.NewReader(complete))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, err := f.parse(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, f.line, err)
		}
		if entry != nil {
			f.entries = append(f.entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan feed: %w", err)
	}
	return f, nil
}

// Path returns the file the feed was loaded from.
func (f *Feed) Path() string {
	return f.path
}

// Entries returns the entries loaded so far.
func (f *Feed) Entries() []*Entry {
	return f.entries
}

// parse turns a line into an entry. Blank lines yield nil.
func (f *Feed) parse(line string) (*Entry, error) {
	f.line++
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	var id, title, body string
	fields := strings.SplitN(line, "\t", 3)
	switch len(fields) {
	case 1:
		title = fields[0]
	case 2:
		id, title = fields[0], fields[1]
	default:
		id, title, body = fields[0], fields[1], fields[2]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = f.newID(title)
	}
	if _, ok := f.seen[id]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	f.seen[id] = struct{}{}

	body = strings.ReplaceAll(body, `\n`, "\n")
	entry := NewEntry(id, strings.TrimSpace(title), body)
	entry.markdown = f.opts.markdown
	return entry, nil
}

func (f *Feed) newID(text string) string {
	if f.opts.uuids {
		return uuid.NewString()
	}
	return fmt.Sprintf("%016x", xxh3.HashString(fmt.Sprintf("%d:%s", f.line, text)))
}
