package tools

import (
	"context"
	"os"
	"strings"

	"github.com/Comcast/rulegraph/crew"
)

// IsURL reports whether the location should be fetched rather than
// read from the local filesystem.
func IsURL(loc string) bool {
	for _, scheme := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(loc, scheme) {
			return true
		}
	}
	return false
}

// ReadGrammarSource reads a grammar source from a URL, from stdin
// ("-"), or from a local file.  Local text is Inline()d (relative to
// the file's directory or the current directory for stdin) before
// it's parsed.
func ReadGrammarSource(ctx context.Context, f *crew.Fetcher, loc string) (*crew.GrammarSource, error) {
	if IsURL(loc) {
		return f.Load(ctx, loc)
	}

	var (
		bs  []byte
		err error
	)
	if loc == "-" {
		bs, err = ReadAllWithInlines(os.Stdin, ".")
	} else {
		bs, err = ReadFileWithInlines(loc)
	}
	if err != nil {
		return nil, err
	}

	src, err := crew.ParseSource(bs)
	if err != nil {
		return nil, err
	}
	if err = f.Resolve(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}
