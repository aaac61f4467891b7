package extract

import (
	"errors"

	"github.com/readableweb/goarticle/internal/article"
)

// ErrEmptyHTML is the one fatal input error: extraction needs at least some
// markup to work with.
var ErrEmptyHTML = errors.New("extract: empty HTML input")

// Extractor is the minimal contract for article extraction strategies.
// Implementations must be deterministic for identical input and options.
type Extractor interface {
	Extract(rawHTML string, opts Options) (*article.Content, error)
}

var _ Extractor = (*Readability)(nil)
