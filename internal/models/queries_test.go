package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestArticleQueryPage(t *testing.T) {
	before := time.UnixMilli(1_700_000_000_000).UTC()
	q := ArticleQuery{
		Category: CategoryWorld,
		Language: "en",
		Tiers:    PublishedTiers,
		Before:   &before,
		Limit:    21,
	}

	sql, args, err := q.pageQuery().ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	for _, want := range []string{
		"a.category = $1",
		"a.language = $2",
		"a.publication_tier IN ($3,$4)",
		"a.created_at <= $5",
		"ORDER BY a.created_at DESC, a.id DESC",
		"LIMIT 21",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("page query missing %q:\n%s", want, sql)
		}
	}
	if len(args) != 5 {
		t.Fatalf("args = %v", args)
	}
	if args[4] != before {
		t.Errorf("cursor arg = %v", args[4])
	}
}

func TestArticleQueryPageTieBreak(t *testing.T) {
	before := time.UnixMilli(1_700_000_000_000).UTC()
	id := uuid.MustParse("6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b")
	q := ArticleQuery{Language: "en", Before: &before, BeforeID: id, Limit: 4}

	sql, args, err := q.pageQuery().ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	want := "(a.created_at < $2 OR (a.created_at = $3 AND a.id <= $4))"
	if !strings.Contains(sql, want) {
		t.Errorf("page query missing %q:\n%s", want, sql)
	}
	if len(args) != 4 || args[1] != before || args[2] != before || args[3] != id {
		t.Errorf("args = %v", args)
	}
}

func TestArticleQueryCountIgnoresCursor(t *testing.T) {
	before := time.Now()
	q := ArticleQuery{Country: "fr", Language: "fr", Before: &before, Limit: 5}

	sql, args, err := q.countQuery().ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if strings.Contains(sql, "created_at") || strings.Contains(sql, "LIMIT") {
		t.Errorf("count query must not page:\n%s", sql)
	}
	if !strings.HasPrefix(sql, "SELECT COUNT(*) FROM articles a") {
		t.Errorf("count query = %s", sql)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestStoryGapQuery(t *testing.T) {
	q := StoryGapQuery{Country: "us", Language: "en", ExcludeTiers: []InterestTier{InterestArchived}, Limit: 10}

	sql, args, err := q.query().ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	for _, want := range []string{
		"NOT EXISTS",
		"a.country = $1 AND a.language = $2",
		"$3 = ANY(s.countries) OR $4 = ANY(s.countries)",
		"s.interest_tier NOT IN ($5)",
		"LIMIT 10",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("gap query missing %q:\n%s", want, sql)
		}
	}
	if len(args) != 5 || args[3] != GlobalCountry {
		t.Errorf("args = %v", args)
	}
}

func TestStoryQuery(t *testing.T) {
	sql, args, err := StoryQuery{Country: "de", Tier: InterestNiche, Limit: 3}.query().ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.Contains(sql, "$1 = ANY(s.countries)") || !strings.Contains(sql, "s.interest_tier = $2") {
		t.Errorf("story query = %s", sql)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}
