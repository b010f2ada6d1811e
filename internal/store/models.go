package store

import "time"

// User documents come from the identity provider on first sign-in and are
// immutable afterwards from this system's perspective.
type User struct {
	ID        string
	Name      string
	Email     string
	Image     string
	CreatedAt time.Time
}

// Space layout variants.
const (
	LayoutBlog     = "blog"
	LayoutIdea     = "idea"
	LayoutTimeline = "timeline"
)

func ValidLayout(layout string) bool {
	switch layout {
	case LayoutBlog, LayoutIdea, LayoutTimeline:
		return true
	}
	return false
}

// Space is a curated collection of Moments. Contributors must never be empty,
// and a Moment ID appears at most once in Moments.
type Space struct {
	ID           string
	Title        string
	Image        string
	Description  string
	Contributors []string
	Tags         []string
	Moments      []string
	Layout       string
	CreatedAt    time.Time
}

// Moment is a single authored entry. Author is the owning User ID.
type Moment struct {
	ID         string
	Title      string
	Author     string
	Content    string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// SpacePatch is a partial update; nil fields are left untouched. List fields
// are replaced wholesale when present.
type SpacePatch struct {
	Title        *string
	Image        *string
	Description  *string
	Contributors *[]string
	Tags         *[]string
	Moments      *[]string
	Layout       *string
}

// MomentPatch is a partial update; the store bumps ModifiedAt on every apply.
type MomentPatch struct {
	Title   *string
	Content *string
}
