package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goodoffers/offer-comb/app/database"
	"github.com/goodoffers/offer-comb/app/feed"
	"github.com/goodoffers/offer-comb/app/tasks"
	"github.com/samber/lo"
)

func NewHandler(configCache *feed.ConfigCache, itemRepo database.ItemRepository,
	generator *feed.Generator, runner tasks.SourceRunner) *Handler {
	return &Handler{
		itemRepo:    itemRepo,
		generator:   generator,
		configCache: configCache,
		runner:      runner,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	category, ok := feed.ParseCategory(c.Param("category"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	items, err := h.itemRepo.GetItems(c.Request.Context(), string(category), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "category", category, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(category, items)
	if err != nil {
		slog.Error("RSS generation error", "category", category, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.Header("X-Feed-Category", string(category))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if itemCount, err := h.itemRepo.GetItemCount(c.Request.Context()); err == nil {
		health["items"] = itemCount
	} else {
		slog.Error("Database error", "operation", "get_item_count", "error", err)
		health["status"] = "degraded"
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.itemRepo.GetCategoryStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_category_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	categories := lo.SliceToMap(stats, func(s database.CategoryCount) (string, int) {
		return s.FeedType, s.Count
	})

	c.JSON(http.StatusOK, map[string]interface{}{
		"items":           lo.SumBy(stats, func(s database.CategoryCount) int { return s.Count }),
		"categories":      categories,
		"sources":         h.configCache.GetConfigCount(),
		"enabled_sources": len(h.configCache.GetEnabledConfigs()),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	sourceConfigs := h.configCache.GetConfigs()

	sources := lo.Map(sourceConfigs, func(sc *feed.SourceConfig, _ int) sourceInfo {
		return sourceInfo{
			Name:            sc.Name,
			URL:             sc.URL,
			BaseURL:         sc.BaseURL,
			Variant:         sc.Variant,
			Mode:            sc.Mode(),
			Enabled:         sc.Settings.Enabled,
			MaxEntries:      sc.Settings.MaxEntries,
			ContentSelector: sc.Extraction.ContentSelector.String(),
			ImageSelector:   sc.Extraction.ImageSelector.String(),
			PageFallback:    sc.Extraction.PageFallback,
		}
	})

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIListItems(c *gin.Context) {
	var feedType string
	if raw := c.Query("category"); raw != "" {
		category, ok := feed.ParseCategory(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		feedType = string(category)
	}

	limit, ok := parseLimit(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	items, err := h.itemRepo.GetItems(c.Request.Context(), feedType, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "category", feedType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := lo.Map(items, func(item database.Item, _ int) itemInfo {
		return itemInfo{
			ItemID:      item.ItemHash,
			Title:       item.Title,
			Description: item.Description,
			Link:        item.Link,
			ImageURL:    item.ImageURL,
			SourceURL:   item.SourceURL,
			Category:    item.FeedType,
			PubDate:     item.PubDate.Format(time.RFC3339),
			FeedURL:     item.FeedURL,
			RunID:       item.RunID,
		}
	})

	c.JSON(http.StatusOK, map[string]interface{}{
		"items": result,
		"total": len(result),
	})
}

func (h *Handler) APIRunSource(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	result, err := h.runner.RunSource(c.Request.Context(), name)
	if err != nil {
		slog.Error("Source run failed", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Source run failed",
			"result": result,
		})
		return
	}

	slog.Info("Source run triggered via API", "source", name, "records", result.Records)

	c.JSON(http.StatusOK, result)
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultItemLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, false
	}
	return min(limit, maxItemLimit), true
}
