package entities

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CurrentSchemaVersion is the page record layout written by this version.
// Version 1 records stored a single description instead of sections.
const CurrentSchemaVersion = 2

const (
	maxNameLength         = 200
	maxSectionTitleLength = 200
)

var (
	reSlug            = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reSlugInvalid     = regexp.MustCompile(`[^a-z0-9]+`)
	reSlugMultiHyphen = regexp.MustCompile(`-+`)
)

// SectionTitleSuggestions are offered when authoring a section. Any other
// title is accepted.
var SectionTitleSuggestions = []string{
	"Overview",
	"History",
	"Appearance",
	"Personality",
	"Abilities",
	"Relationships",
	"Geography",
	"Culture",
	"Trivia",
	"Sources",
}

// Section is a titled block of narrative content.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate implements validation.Validatable.
func (s Section) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title,
			validation.When(strings.TrimSpace(s.Content) != "",
				validation.Required.Error("title is required when content is set"),
			),
			validation.Length(0, maxSectionTitleLength),
		),
	)
}

// Page is a catalogued item of any kind.
type Page struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug,omitempty"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Canonical bool      `json:"canonical"`
	Universe  string    `json:"universe,omitempty"` // Empty means no universe
	Relations []string  `json:"relations"`
	Sections  []Section `json:"sections"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields an author controls.
func (p *Page) Validate() error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, maxNameLength),
		),
		validation.Field(&p.Kind,
			validation.Required.Error("kind is required"),
			validation.By(func(value interface{}) error {
				if k, _ := value.(Kind); !k.IsValid() {
					return errors.New("must be one of " + strings.Join(KindNames(), ", "))
				}
				return nil
			}),
		),
		validation.Field(&p.Slug,
			validation.When(p.Slug != "",
				validation.Match(reSlug).Error("must contain only lowercase letters, digits and single hyphens"),
			),
		),
		validation.Field(&p.Sections),
	)
	return FromValidation(err)
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	out := p
	if p.Relations != nil {
		out.Relations = append([]string(nil), p.Relations...)
	}
	if p.Sections != nil {
		out.Sections = append([]Section(nil), p.Sections...)
	}
	return out
}

// Normalize trims author input and replaces nil collections with empty ones.
func (p *Page) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Universe = strings.TrimSpace(p.Universe)
	p.Slug = strings.TrimSpace(p.Slug)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	if p.Relations == nil {
		p.Relations = []string{}
	}
	if p.Sections == nil {
		p.Sections = []Section{}
	}
	for i := range p.Sections {
		p.Sections[i].Title = strings.TrimSpace(p.Sections[i].Title)
	}
}

// References reports whether the page's relation list contains id.
func (p *Page) References(id string) bool {
	for _, r := range p.Relations {
		if r == id {
			return true
		}
	}
	return false
}

// Slugify derives a URL handle from a display name.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, name)
	if err != nil {
		ascii = name
	}

	s := strings.ToLower(ascii)
	s = reSlugInvalid.ReplaceAllString(s, "-")
	s = reSlugMultiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FromValidation converts ozzo validation errors into a ValidationError.
// Other errors are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, fieldErr := range verrs {
			fields[field] = fieldErr.Error()
		}
		return &ValidationError{Fields: fields}
	}
	return err
}
