package fetch

// DefaultSources returns the curated world-news and defense feeds.
func DefaultSources() []Source {
	return []Source{
		// Wire and public broadcasters
		{Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Domain: "bbc.co.uk", Category: "wire", Credibility: 90},
		{Name: "NPR World", URL: "https://feeds.npr.org/1004/rss.xml", Domain: "npr.org", Category: "wire", Credibility: 85},
		{Name: "The Guardian World", URL: "https://www.theguardian.com/world/rss", Domain: "theguardian.com", Category: "wire", Credibility: 85},

		// Regional
		{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml", Domain: "aljazeera.com", Category: "regional", Credibility: 75},
		{Name: "DW World", URL: "https://rss.dw.com/rdf/rss-en-world", Domain: "dw.com", Category: "regional", Credibility: 80},
		{Name: "Kyiv Independent", URL: "https://kyivindependent.com/rss/", Domain: "kyivindependent.com", Category: "regional"},

		// Defense and security
		{Name: "Defense News", URL: "https://www.defensenews.com/arc/outboundfeeds/rss/?outputType=xml", Domain: "defensenews.com", Category: "defense", Credibility: 80},
		{Name: "Breaking Defense", URL: "https://breakingdefense.com/feed/", Domain: "breakingdefense.com", Category: "defense"},
		{Name: "Krebs on Security", URL: "https://krebsonsecurity.com/feed/", Domain: "krebsonsecurity.com", Category: "cyber"},
	}
}
