package interfaces

import "fmt"

// MaxSlugLength bounds identifier length to keep keys and paths sane.
const MaxSlugLength = 200

// Slug is a validated, URL-safe post identifier. Construct one with
// ParseSlug; a Slug built any other way carries no validity guarantee,
// which is why consumers re-run Validate before using it to build a
// filesystem path or object key.
type Slug string

// ParseSlug validates a candidate identifier and returns it as a Slug.
// Only non-empty strings of at most MaxSlugLength characters composed of
// ASCII letters, digits, hyphens, and underscores are accepted. Anything
// else, including path separators, dots, and whitespace, is rejected with
// an error wrapping ErrInvalidSlug.
func ParseSlug(candidate string) (Slug, error) {
	if candidate == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSlug)
	}
	if len(candidate) > MaxSlugLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidSlug, MaxSlugLength)
	}
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return "", fmt.Errorf("%w: character %q not allowed", ErrInvalidSlug, c)
		}
	}
	return Slug(candidate), nil
}

// Validate re-checks the slug against the same rules as ParseSlug.
func (s Slug) Validate() error {
	_, err := ParseSlug(string(s))
	return err
}

// String returns the raw slug string.
func (s Slug) String() string {
	return string(s)
}
