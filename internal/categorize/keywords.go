package categorize

// Spending categories form a fixed closed set; CategoryOther is the last
// resort when nothing matches.
const (
	CategoryFoodDining     = "Food & Dining"
	CategoryGroceries      = "Groceries"
	CategoryTransportation = "Transportation"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryUtilities      = "Utilities"
	CategoryHealthcare     = "Healthcare"
	CategoryTravel         = "Travel"
	CategoryEducation      = "Education"
	CategoryOther          = "Other"
)

// DefaultKeywords returns the category keyword table. Callers get a fresh
// copy each time so a Categorizer's table can never be mutated from outside,
// and tests or locales can swap in their own.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		CategoryFoodDining: {
			"restaurant", "cafe", "coffee", "food", "dining", "pizza", "burger",
			"sushi", "bar", "pub", "diner", "grill", "kitchen", "bistro", "eatery",
			"mcdonald", "starbucks", "subway", "chipotle", "taco", "bakery",
		},
		CategoryGroceries: {
			"grocery", "supermarket", "market", "walmart", "target", "costco",
			"whole foods", "trader joe", "kroger", "safeway", "albertsons",
			"fresh", "organic", "produce",
		},
		CategoryTransportation: {
			"uber", "lyft", "taxi", "gas", "fuel", "parking", "transit", "metro",
			"bus", "train", "airline", "flight", "car rental", "toll", "auto",
			"shell", "chevron", "exxon", "bp", "mobil",
		},
		CategoryShopping: {
			"amazon", "ebay", "mall", "store", "shop", "retail", "clothing",
			"fashion", "apparel", "shoes", "electronics", "best buy", "apple store",
			"nike", "adidas", "zara", "h&m", "department",
		},
		CategoryEntertainment: {
			"movie", "theater", "cinema", "netflix", "spotify", "game", "concert",
			"ticket", "show", "museum", "park", "amusement", "entertainment",
			"streaming", "subscription", "hulu", "disney",
		},
		CategoryUtilities: {
			"electric", "water", "gas", "utility", "power", "internet", "cable",
			"phone", "mobile", "telecom", "att", "verizon", "t-mobile", "comcast",
			"spectrum",
		},
		CategoryHealthcare: {
			"hospital", "clinic", "doctor", "medical", "pharmacy", "cvs", "walgreens",
			"health", "dental", "vision", "medicine", "prescription", "insurance",
			"lab", "urgent care",
		},
		CategoryTravel: {
			"hotel", "motel", "airbnb", "resort", "booking", "expedia", "travel",
			"vacation", "trip", "marriott", "hilton", "hyatt", "rental car",
			"cruise", "tour",
		},
		CategoryEducation: {
			"school", "university", "college", "tuition", "education", "books",
			"textbook", "course", "training", "learning", "udemy", "coursera",
			"class", "seminar", "workshop",
		},
	}
}
