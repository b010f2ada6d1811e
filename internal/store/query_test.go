package store

import "testing"

func TestCompileFiltersEmpty(t *testing.T) {
	where, args := compileFilters(nil)
	if where != "" || args != nil {
		t.Fatalf("expected empty fragment, got %q with %d args", where, len(args))
	}
}

func TestCompileFiltersEquals(t *testing.T) {
	where, args := compileFilters([]Filter{Equals("author", "usr_1")})
	if where != " WHERE author = $1" {
		t.Errorf("unexpected fragment: %q", where)
	}
	if len(args) != 1 || args[0] != "usr_1" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestCompileFiltersPrefix(t *testing.T) {
	where, args := compileFilters([]Filter{Prefix("title", "go")})
	if where != " WHERE title >= $1 AND title <= $2" {
		t.Errorf("unexpected fragment: %q", where)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if args[0] != "go" || args[1] != "go"+prefixSentinel {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestCompileFiltersAnyOf(t *testing.T) {
	where, args := compileFilters([]Filter{AnyOf("tags", []string{"go", "web"})})
	want := " WHERE (tags @> jsonb_build_array($1::text) OR tags @> jsonb_build_array($2::text))"
	if where != want {
		t.Errorf("unexpected fragment: %q", where)
	}
	if len(args) != 2 || args[0] != "go" || args[1] != "web" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestCompileFiltersAnyOfEmptyValuesSkipped(t *testing.T) {
	where, args := compileFilters([]Filter{AnyOf("tags", nil), Equals("layout", "blog")})
	if where != " WHERE layout = $1" {
		t.Errorf("empty any-of should be dropped, got %q", where)
	}
	if len(args) != 1 {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestCompileFiltersConjunction(t *testing.T) {
	where, args := compileFilters([]Filter{
		Prefix("title", "a"),
		AnyOf("contributors", []string{"usr_1"}),
	})
	want := " WHERE title >= $1 AND title <= $2 AND (contributors @> jsonb_build_array($3::text))"
	if where != want {
		t.Errorf("unexpected fragment: %q", where)
	}
	if len(args) != 3 {
		t.Errorf("expected 3 args, got %d", len(args))
	}
}

func TestValidLayout(t *testing.T) {
	for _, layout := range []string{LayoutBlog, LayoutIdea, LayoutTimeline} {
		if !ValidLayout(layout) {
			t.Errorf("expected %q to be valid", layout)
		}
	}
	if ValidLayout("grid") {
		t.Error("expected grid to be invalid")
	}
}
