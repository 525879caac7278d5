package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultMaxEntries = 10

type ConfigCache struct {
	feedsDir   string
	classifier *Classifier
	cache      map[string]*SourceConfig
	mu         sync.RWMutex
}

func NewConfigCache(feedsDir string, classifier *Classifier) *ConfigCache {
	return &ConfigCache{
		feedsDir:   feedsDir,
		classifier: classifier,
		cache:      make(map[string]*SourceConfig),
	}
}

// Run loads every *.yml file in the feeds directory. A malformed file only
// drops that source; its error is part of the joined error returned.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	var errs []error
	for _, file := range files {
		sourceName := strings.TrimSuffix(filepath.Base(file), ".yml")

		sourceConfig, err := cc.LoadConfig(sourceName)
		if err != nil {
			errs = append(errs, fmt.Errorf("error loading %s: %w", file, err))
			continue
		}

		slog.Debug("Configuration loaded",
			"source", sourceName,
			"enabled", sourceConfig.Settings.Enabled,
			"mode", sourceConfig.Mode(),
			"variant", sourceConfig.Variant)
	}

	return errors.Join(errs...)
}

func (cc *ConfigCache) LoadConfig(sourceName string) (*SourceConfig, error) {
	configFile := cc.getConfigFilePath(sourceName)
	sourceConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	sourceConfig.Name = sourceName

	if err := ValidateConfig(sourceConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	if sourceConfig.Variant == VariantNone && cc.classifier != nil {
		sourceConfig.Variant = cc.classifier.ResolveVariant(sourceConfig.URL)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[sourceConfig.Name] = sourceConfig

	return sourceConfig, nil
}

func (cc *ConfigCache) GetConfig(sourceName string) (*SourceConfig, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	sourceConfig, ok := cc.cache[sourceName]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", sourceName)
	}
	return sourceConfig, nil
}

// GetConfigs returns all loaded sources ordered by name.
func (cc *ConfigCache) GetConfigs() []*SourceConfig {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*SourceConfig, 0, len(cc.cache))
	for _, v := range cc.cache {
		configs = append(configs, v)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs
}

func (cc *ConfigCache) GetEnabledConfigs() []*SourceConfig {
	var enabled []*SourceConfig
	for _, c := range cc.GetConfigs() {
		if c.Settings.Enabled {
			enabled = append(enabled, c)
		}
	}
	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*SourceConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var sourceConfig SourceConfig
	if err := yaml.Unmarshal(data, &sourceConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if sourceConfig.Settings.MaxEntries == 0 {
		sourceConfig.Settings.MaxEntries = DefaultMaxEntries
	}

	return &sourceConfig, nil
}

func (cc *ConfigCache) getConfigFilePath(sourceName string) string {
	return filepath.Join(cc.feedsDir, sourceName+".yml")
}

// ValidateConfig checks the invariants every source must hold before it is
// processed. Errors wrap ErrInvalidSource.
func ValidateConfig(sourceConfig *SourceConfig) error {
	if sourceConfig == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidSource)
	}

	requiredURLs := []struct {
		name  string
		value string
	}{
		{"feed URL", sourceConfig.URL},
		{"base URL", sourceConfig.BaseURL},
	}

	for _, field := range requiredURLs {
		if field.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidSource, field.name)
		}
		parsed, err := url.Parse(field.value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %s %q is not an absolute URI", ErrInvalidSource, field.name, field.value)
		}
	}

	if sourceConfig.Settings.MaxEntries <= 0 {
		return fmt.Errorf("%w: max entries must be positive", ErrInvalidSource)
	}

	switch sourceConfig.Variant {
	case VariantNone, VariantLoot, VariantGames:
	default:
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidSource, sourceConfig.Variant)
	}

	if sourceConfig.Extraction.ImageSelector != nil && sourceConfig.Extraction.ContentSelector == nil {
		return fmt.Errorf("%w: image selector requires a content selector", ErrInvalidSource)
	}

	return nil
}
