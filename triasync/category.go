package triasync

import (
	"strings"

	"github.com/smartpharmacy/crm_backend/models"
)

type categoryRule struct {
	category models.ProductCategory
	keywords []string
}

// Rules are checked in order; the first keyword hit wins. Everything else is
// classified as prescription medicine.
var categoryRules = []categoryRule{
	{
		category: models.ProductCategoryDermo,
		keywords: []string{
			"krem", "losyon", "serum", "şampuan", "sampuan", "cilt", "güneş", "gunes",
			"spf", "dudak", "nemlendirici", "tonik", "peeling", "maske", "bioderma",
			"vichy", "la roche", "avene", "mustela", "sebamed", "eucerin", "cerave",
		},
	},
	{
		category: models.ProductCategoryVitamin,
		keywords: []string{
			"vitamin", "vit ", "vit.", "omega", "balık yağı", "balik yagi", "magnezyum",
			"çinko", "cinko", "demir", "kalsiyum", "probiyotik", "multivit", "d3", "b12",
			"koenzim", "kolajen", "collagen", "takviye",
		},
	},
	{
		category: models.ProductCategoryMama,
		keywords: []string{
			"mama", "aptamil", "bebelac", "hipp", "humana", "biberon", "emzik",
			"bebek bezi", "pişik", "pisik",
		},
	},
	{
		category: models.ProductCategoryOTC,
		keywords: []string{
			"parol", "aspirin", "majezik", "apranax", "nurofen", "arveles",
			"pastil", "burun spreyi", "öksürük", "oksuruk", "gargara", "ağrı kesici",
			"agri kesici",
		},
	},
}

// Categorize picks a product category from the product name.
func Categorize(name string) models.ProductCategory {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return models.ProductCategoryIlac
	}
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.category
			}
		}
	}
	return models.ProductCategoryIlac
}
