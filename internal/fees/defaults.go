package fees

import "github.com/hareba/catres/internal/service"

// defaultSchedules is the built-in fee and attribute table for the
// categories the engine most commonly resolves to. Rates follow the
// marketplace's published final-value fees.
func defaultSchedules() map[string]service.FeeSchedule {
	return map[string]service.FeeSchedule{
		"9355": { // Cell Phones & Smartphones
			FeePercent: 13.25,
			RequiredAttributes: map[string][]string{
				"Brand":            nil,
				"Model":            nil,
				"Storage Capacity": {"64 GB", "128 GB", "256 GB", "512 GB", "1 TB"},
				"Condition":        {"New", "Open box", "Used", "For parts or not working"},
			},
		},
		"177": { // PC Laptops & Netbooks
			FeePercent: 13.25,
			RequiredAttributes: map[string][]string{
				"Brand":            nil,
				"Screen Size":      nil,
				"Processor":        nil,
				"RAM Size":         {"8 GB", "16 GB", "32 GB", "64 GB"},
				"Condition":        {"New", "Open box", "Used", "For parts or not working"},
				"Operating System": nil,
			},
		},
		"625": { // Cameras & Photo
			FeePercent: 13.25,
			RequiredAttributes: map[string][]string{
				"Brand":     nil,
				"Type":      {"DSLR", "Mirrorless", "Point & Shoot", "Film"},
				"Condition": {"New", "Used", "For parts or not working"},
			},
		},
		"14324": { // Wristwatches
			FeePercent: 15.0,
			RequiredAttributes: map[string][]string{
				"Brand":      nil,
				"Department": {"Men", "Women", "Unisex Adult"},
				"Movement":   {"Mechanical (Automatic)", "Mechanical (Hand-winding)", "Quartz", "Solar"},
			},
		},
		"139973": { // Video Games & Consoles
			FeePercent: 13.25,
			RequiredAttributes: map[string][]string{
				"Platform":    nil,
				"Region Code": {"NTSC-J (Japan)", "NTSC-U/C (US/Canada)", "PAL", "Region Free"},
			},
		},
		"619": { // Musical Instruments & Gear
			FeePercent: 13.25,
			RequiredAttributes: map[string][]string{
				"Brand": nil,
				"Type":  nil,
			},
		},
		"267": { // Books & Magazines
			FeePercent: 14.95,
			RequiredAttributes: map[string][]string{
				"Format":   {"Hardcover", "Paperback", "Magazine"},
				"Language": nil,
			},
		},
		"11233": { // Music
			FeePercent: 14.95,
			RequiredAttributes: map[string][]string{
				"Format": {"CD", "Vinyl", "Cassette"},
			},
		},
		"220": { // Toys & Hobbies
			FeePercent: 13.25,
			RequiredAttributes: map[string][]string{
				"Brand": nil,
				"Type":  nil,
			},
		},
		"11450": { // Clothing, Shoes & Accessories
			FeePercent: 15.0,
			RequiredAttributes: map[string][]string{
				"Brand":      nil,
				"Department": {"Men", "Women", "Unisex Adult", "Kids"},
				"Size":       nil,
			},
		},
	}
}
