package antispam

// Keywords disproportionately present in spam messages, such as
// cryptocurrency exchange names. Matched as case-insensitive substrings.
var suspiciousKeywords = []string{
	"invest",
	"profit",
	"binance",
	"binanse",
	"bitcoin",
	"testnet",
	"bitmex",
}

// Entity kinds that make a message more likely to be spam.
var suspiciousEntities = map[EntityType]struct{}{
	EntityURL:     {},
	EntityTextURL: {},
	EntityEmail:   {},
	EntityPhone:   {},
}

// Attention-grabbing first names that no legitimate user would actually
// use as a name. Compared against the lowercased first name.
var suspiciousFirstNames = map[string]struct{}{
	"announcement": {},
	"info":         {},
	"urgent":       {},
	"limited":      {},
	"holiday":      {},
	"verified":     {},
	"solidified":   {},
	"recommended":  {},
	"temporarily":  {},
}
