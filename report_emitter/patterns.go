package report_emitter

import (
	"strings"

	"github.com/ninelmnts/assetscan/asset_scanner/models"
)

// DefaultMaxPatternExamples caps how many matches each pattern listing prints.
const DefaultMaxPatternExamples = 5

// DefaultRevenueKeywords flag file names that look like sellable material.
var DefaultRevenueKeywords = []string{
	"license",
	"pricing",
	"payment",
	"checkout",
	"buy",
	"purchase",
	"demo",
	"portfolio",
	"service",
	"product",
	"offer",
	"sale",
}

// DefaultProductLineTokens flag files belonging to the Event OS product line.
var DefaultProductLineTokens = []string{"event", "os"}

// PatternConfig controls the keyword listings printed after a scan.
type PatternConfig struct {
	// RevenueKeywords are matched against the lower-cased file name.
	RevenueKeywords []string `mapstructure:"revenue_keywords"`
	// ProductLineTokens are matched against the lower-cased relative path.
	ProductLineTokens []string `mapstructure:"product_line_tokens"`
	MaxExamples       int      `mapstructure:"max_examples"`
}

// DefaultPatternConfig returns the stock keyword sets.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		RevenueKeywords:   append([]string(nil), DefaultRevenueKeywords...),
		ProductLineTokens: append([]string(nil), DefaultProductLineTokens...),
		MaxExamples:       DefaultMaxPatternExamples,
	}
}

// PatternMatches holds every record that matched each listing, in scan order.
type PatternMatches struct {
	Revenue     []models.FileRecord
	ProductLine []models.FileRecord
}

// FindPatterns returns the records matching the revenue keywords and the
// product-line tokens. A record may appear in both lists.
func FindPatterns(files []models.FileRecord, cfg PatternConfig) PatternMatches {
	revenue := lowerAll(cfg.RevenueKeywords)
	productLine := lowerAll(cfg.ProductLineTokens)

	matches := PatternMatches{
		Revenue:     []models.FileRecord{},
		ProductLine: []models.FileRecord{},
	}
	for _, f := range files {
		if containsAny(strings.ToLower(f.Name), revenue) {
			matches.Revenue = append(matches.Revenue, f)
		}
		if containsAny(strings.ToLower(f.RelativePath), productLine) {
			matches.ProductLine = append(matches.ProductLine, f)
		}
	}
	return matches
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
