package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultLootFeedURL, DefaultGamesFeedURL)
}

func TestClassifierClassify(t *testing.T) {
	classifier := newTestClassifier()

	tests := []struct {
		name      string
		sourceURL string
		feedURL   string
		variant   Variant
		expected  Category
	}{
		{"loot feed", "https://www.gamerpower.com", DefaultLootFeedURL, VariantNone, CategoryDLC},
		{"games feed", "https://www.gamerpower.com", DefaultGamesFeedURL, VariantNone, CategoryVideogame},
		{"unknown giveaway feed defaults to videogame", "https://www.gamerpower.com", "https://www.gamerpower.com/rss/other", VariantNone, CategoryVideogame},
		{"resolved loot variant", "https://www.gamerpower.com", "https://mirror.example/loot", VariantLoot, CategoryDLC},
		{"resolved games variant", "https://gamerpower.com", "https://mirror.example/games", VariantGames, CategoryVideogame},
		{"giveaway domain is case insensitive", "https://WWW.GamerPower.COM", DefaultLootFeedURL, VariantNone, CategoryDLC},
		{"itch", "https://itch.io", "https://itch.io/games/free.xml", VariantNone, CategoryItchioGame},
		{"itch wins over variant", "https://itch.io", DefaultLootFeedURL, VariantLoot, CategoryItchioGame},
		{"class central", "https://www.classcentral.com", "https://www.classcentral.com/report/feed", VariantNone, CategoryIvyLeagueCourse},
		{"real discount", "https://www.real.discount", "https://www.real.discount/feed", VariantNone, CategoryUdemyCourse},
		{"scroll coupons", "https://scrollcoupons.com", "https://scrollcoupons.com/feed", VariantNone, CategoryUdemyCourse},
		{"online courses", "https://onlinecourses.ooo", "https://onlinecourses.ooo/feed", VariantNone, CategoryUdemyCourse},
		{"infognu", "https://infognu.com", "https://infognu.com/feed", VariantNone, CategoryUdemyCourse},
		{"jucktion", "https://jucktion.com", "https://jucktion.com/feed", VariantNone, CategoryUdemyCourse},
		{"substring anywhere in URL", "https://proxy.example/?u=itch.io", "https://proxy.example/feed", VariantNone, CategoryItchioGame},
		{"unknown", "https://example.com", "https://example.com/feed", VariantNone, CategoryUnknown},
		{"empty source URL", "", "https://example.com/feed", VariantNone, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &SourceConfig{URL: tt.feedURL, BaseURL: tt.sourceURL, Variant: tt.variant}
			record := &Record{Title: "Item", SourceURL: tt.sourceURL, Source: source.Ref()}

			assert.Equal(t, tt.expected, classifier.Classify(record, source))
		})
	}
}

func TestClassifierClassifyWithoutSource(t *testing.T) {
	classifier := newTestClassifier()

	record := &Record{Title: "Item", SourceURL: "https://www.gamerpower.com"}
	assert.Equal(t, CategoryVideogame, classifier.Classify(record, nil))
}

func TestClassifierResolveVariant(t *testing.T) {
	classifier := NewClassifier("https://a.example/loot", "https://a.example/games")

	assert.Equal(t, VariantLoot, classifier.ResolveVariant("https://a.example/loot"))
	assert.Equal(t, VariantGames, classifier.ResolveVariant("https://a.example/games"))
	assert.Equal(t, VariantNone, classifier.ResolveVariant("https://a.example/loot/"))
	assert.Equal(t, VariantNone, classifier.ResolveVariant(""))
}

func TestParseCategory(t *testing.T) {
	category, ok := ParseCategory("Udemy_Course")
	assert.True(t, ok)
	assert.Equal(t, CategoryUdemyCourse, category)

	_, ok = ParseCategory("udemy_course")
	assert.False(t, ok)
}
