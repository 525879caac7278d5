package feed

import (
	"log/slog"
	"strings"
)

const (
	DefaultLootFeedURL  = "https://www.gamerpower.com/rss/loot"
	DefaultGamesFeedURL = "https://www.gamerpower.com/rss/games"
)

const (
	giveawayDomain   = "gamerpower.com"
	itchDomain       = "itch.io"
	courseListDomain = "classcentral.com"
)

var couponDomains = []string{
	"real.discount",
	"scrollcoupons.com",
	"onlinecourses.ooo",
	"infognu.com",
	"jucktion.com",
}

// Classifier assigns a category to a record based on where it came from.
// Domain checks are substring matches on the lowercased source URL.
type Classifier struct {
	lootFeedURL  string
	gamesFeedURL string
}

func NewClassifier(lootFeedURL, gamesFeedURL string) *Classifier {
	return &Classifier{
		lootFeedURL:  lootFeedURL,
		gamesFeedURL: gamesFeedURL,
	}
}

// ResolveVariant tells loot and games giveaway feeds apart by their exact
// feed address. Called once per source when configurations are loaded.
func (c *Classifier) ResolveVariant(feedURL string) Variant {
	switch feedURL {
	case c.lootFeedURL:
		return VariantLoot
	case c.gamesFeedURL:
		return VariantGames
	}
	return VariantNone
}

func (c *Classifier) Classify(record *Record, source *SourceConfig) Category {
	sourceURL := strings.ToLower(record.SourceURL)

	switch {
	case strings.Contains(sourceURL, giveawayDomain):
		return c.classifyGiveaway(record, source)
	case strings.Contains(sourceURL, itchDomain):
		return CategoryItchioGame
	case strings.Contains(sourceURL, courseListDomain):
		return CategoryIvyLeagueCourse
	}

	for _, domain := range couponDomains {
		if strings.Contains(sourceURL, domain) {
			return CategoryUdemyCourse
		}
	}

	return CategoryUnknown
}

func (c *Classifier) classifyGiveaway(record *Record, source *SourceConfig) Category {
	variant := VariantNone
	if source != nil {
		variant = source.Variant
		if variant == VariantNone {
			variant = c.ResolveVariant(source.URL)
		}
	}

	switch variant {
	case VariantLoot:
		return CategoryDLC
	case VariantGames:
		return CategoryVideogame
	}

	slog.Warn("Giveaway source has no known variant, defaulting to Videogame",
		"title", record.Title,
		"source_url", record.SourceURL)
	return CategoryVideogame
}
