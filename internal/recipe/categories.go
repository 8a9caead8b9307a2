package recipe

// exclusionCategories maps a named category to the individual ingredient
// names it expands to. Category names are matched case-insensitively.
var exclusionCategories = map[string][]string{
	"tree_nuts": {
		"almonds", "cashews", "walnuts", "pecans", "pistachios",
		"hazelnuts", "macadamia_nuts", "brazil_nuts", "pine_nuts",
	},
	"shellfish": {
		"shrimp", "crab", "lobster", "scallops", "mussels",
		"clams", "oysters", "crayfish",
	},
	"dairy": {
		"milk", "butter", "cheese", "cream", "yogurt",
		"sour_cream", "cream_cheese", "ghee",
	},
	"gluten_grains": {
		"wheat_flour", "barley", "rye", "bread", "pasta",
		"couscous", "bulgur", "semolina",
	},
	"nightshades": {
		"tomatoes", "potatoes", "eggplant", "bell_peppers",
		"chili_peppers", "paprika", "cayenne",
	},
	"eggs": {
		"eggs", "egg_whites", "egg_yolks", "mayonnaise",
	},
	"soy": {
		"soy_sauce", "tofu", "tempeh", "edamame", "miso", "soybeans",
	},
}

// ExpandExclusions expands category names into their member ingredients and
// passes plain ingredient names through, returning a normalized lookup set.
func ExpandExclusions(exclusions []string) map[string]struct{} {
	expanded := make(map[string]struct{})
	for _, entry := range exclusions {
		key := NormalizeName(entry)
		if members, ok := exclusionCategories[key]; ok {
			for _, member := range members {
				expanded[NormalizeName(member)] = struct{}{}
			}
			continue
		}
		expanded[key] = struct{}{}
	}
	return expanded
}

// KnownCategories lists the category names ExpandExclusions recognizes.
func KnownCategories() []string {
	names := make([]string, 0, len(exclusionCategories))
	for name := range exclusionCategories {
		names = append(names, name)
	}
	return names
}
