package rules

// DefaultRules is the built-in fallback table, ordered by priority. The
// keyword sets are intentionally broad: the table exists to catch queries
// the learning store has never seen, and its winners are fed back into
// the store so repeats graduate to first-class learned patterns.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:           "smartphones",
			Keywords:       []string{"iphone", "smartphone", "galaxy", "pixel", "android", "apple", "xperia", "phone"},
			CategoryID:     "9355",
			CategoryName:   "Cell Phones & Smartphones",
			CategoryPath:   []string{"Electronics", "Cell Phones & Accessories", "Cell Phones & Smartphones"},
			BaseConfidence: 90,
			PriceMin:       3000,
			PriceMax:       400000,
			Priority:       100,
		},
		{
			Name:           "laptops",
			Keywords:       []string{"laptop", "macbook", "thinkpad", "notebook", "chromebook", "zenbook"},
			CategoryID:     "177",
			CategoryName:   "PC Laptops & Netbooks",
			CategoryPath:   []string{"Computers/Tablets & Networking", "Laptops & Netbooks", "PC Laptops & Netbooks"},
			BaseConfidence: 85,
			PriceMin:       5000,
			PriceMax:       600000,
			Priority:       90,
		},
		{
			Name:           "cameras",
			Keywords:       []string{"camera", "lens", "nikon", "canon", "dslr", "mirrorless", "leica"},
			CategoryID:     "625",
			CategoryName:   "Cameras & Photo",
			CategoryPath:   []string{"Cameras & Photo"},
			BaseConfidence: 85,
			Priority:       80,
		},
		{
			Name:           "watches",
			Keywords:       []string{"watch", "seiko", "citizen", "casio", "rolex", "chronograph", "wristwatch"},
			CategoryID:     "14324",
			CategoryName:   "Wristwatches",
			CategoryPath:   []string{"Jewelry & Watches", "Watches, Parts & Accessories", "Wristwatches"},
			BaseConfidence: 80,
			Priority:       75,
		},
		{
			Name:           "video games",
			Keywords:       []string{"nintendo", "playstation", "xbox", "console", "famicom", "gameboy", "switch"},
			CategoryID:     "139973",
			CategoryName:   "Video Games & Consoles",
			CategoryPath:   []string{"Video Games & Consoles"},
			BaseConfidence: 85,
			Priority:       70,
		},
		{
			Name:           "musical instruments",
			Keywords:       []string{"guitar", "bass", "fender", "gibson", "synthesizer", "ukulele", "violin"},
			CategoryID:     "619",
			CategoryName:   "Musical Instruments & Gear",
			CategoryPath:   []string{"Musical Instruments & Gear"},
			BaseConfidence: 80,
			Priority:       60,
		},
		{
			Name:           "music media",
			Keywords:       []string{"vinyl", "record", "cassette", "album", "single"},
			CategoryID:     "11233",
			CategoryName:   "Music",
			CategoryPath:   []string{"Music"},
			BaseConfidence: 70,
			Priority:       50,
		},
		{
			Name:           "books",
			Keywords:       []string{"book", "novel", "manga", "comic", "magazine", "hardcover", "paperback"},
			CategoryID:     "267",
			CategoryName:   "Books & Magazines",
			CategoryPath:   []string{"Books & Magazines"},
			BaseConfidence: 70,
			Priority:       40,
		},
		{
			Name:           "toys and hobbies",
			Keywords:       []string{"figure", "figurine", "plush", "lego", "toy", "gundam", "plamo"},
			CategoryID:     "220",
			CategoryName:   "Toys & Hobbies",
			CategoryPath:   []string{"Toys & Hobbies"},
			BaseConfidence: 70,
			Priority:       30,
		},
		{
			Name:           "clothing and accessories",
			Keywords:       []string{"jacket", "sneaker", "bag", "wallet", "purse", "shirt", "dress", "boots"},
			CategoryID:     "11450",
			CategoryName:   "Clothing, Shoes & Accessories",
			CategoryPath:   []string{"Clothing, Shoes & Accessories"},
			BaseConfidence: 65,
			Priority:       20,
		},
	}
}
