package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

func alwaysTier[E any, T ~string](tier T) verdictFunc[E, T] {
	return func(E) (*Verdict[T], error) {
		return &Verdict[T]{Tier: tier, Reason: "ok"}, nil
	}
}

func TestStoryDigestTaskEndToEnd(t *testing.T) {
	targets := []Target{{Country: "us", Language: "en"}, {Country: "gb", Language: "en"}}
	stories := &memStories{}
	articles := &memArticles{}
	stamps := NewStamper(tickingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	items := staticNews(cluster("A", "a1", "a2"), cluster("B", "b1", "b2"), cluster("thin", "t1"))
	task := NewStoryDigestTask(
		TaskOptions{Schedule: "0 */2 * * *", OnStartup: true, Targets: targets, Workers: 2},
		NewDigestion(items, stories, &stubDigester{}, stamps),
		NewGeneration(stories, articles, stubComposer{}, stamps, 20, nil),
		NewArticleClassification(articles, alwaysTier[models.Article](models.PublicationStandard), 50),
	)

	if task.Name() != TaskStoryDigest || task.Schedule() != "0 */2 * * *" || !task.ExecuteOnStartup() {
		t.Fatalf("task surface = %s %s %v", task.Name(), task.Schedule(), task.ExecuteOnStartup())
	}
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(stories.stories) != 4 {
		t.Fatalf("stories = %d, want 4", len(stories.stories))
	}
	got := articles.snapshot()
	if len(got) == 0 {
		t.Fatal("no articles generated")
	}
	for _, a := range got {
		if a.PublicationTier != models.PublicationStandard {
			t.Errorf("article %q tier = %s", a.Headline, a.PublicationTier)
		}
	}
}

func TestArticleGenerationTaskSurvivesTargetFailure(t *testing.T) {
	targets := []Target{{Country: "us", Language: "en"}, {Country: "fr", Language: "fr"}}
	articles := &memArticles{}
	writer := &stubWriter{drafts: drafts(4, 2)}

	task := NewArticleGenerationTask(
		TaskOptions{Targets: targets, Workers: 1},
		NewDirectGeneration(staticNews(cluster("x", "1")), articles, writer, nil, WithBatchShape(4, 2)),
		NewArticleClassification(articles, alwaysTier[models.Article](models.PublicationNiche), 50),
	)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(articles.snapshot()); got != 8 {
		t.Fatalf("articles = %d, want 8", got)
	}

	writer.drafts = drafts(3, 2)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("target failures must not fail the run: %v", err)
	}
	if got := len(articles.snapshot()); got != 8 {
		t.Fatalf("articles = %d after bad batch", got)
	}
}

func TestStoryClassificationTask(t *testing.T) {
	stories := &memStories{}
	seedStory(t, stories, "one", models.InterestPending)
	task := NewStoryClassificationTask(TaskOptions{Schedule: "15 * * * *"},
		NewStoryClassification(stories, alwaysTier[models.Story](models.InterestStandard), 50))

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if stories.stories[0].InterestTier != models.InterestStandard {
		t.Fatalf("tier = %s", stories.stories[0].InterestTier)
	}
}
