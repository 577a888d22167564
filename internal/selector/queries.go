package selector

import (
	"sort"
	"strings"
)

// GenericQuery is used for keywords with no mapping
const GenericQuery = "business professional office teamwork"

// keywordQueries maps post keywords to photo search queries. Keys are
// lowercase; Japanese keys cover the site's primary audience.
var keywordQueries = map[string]string{
	"ai":                "artificial intelligence technology",
	"ai marketing":      "artificial intelligence marketing data",
	"analytics":         "data analytics dashboard",
	"branding":          "brand identity design",
	"content marketing": "content creation writing",
	"conversion":        "website conversion growth chart",
	"digital marketing": "digital marketing strategy laptop",
	"email marketing":   "email newsletter laptop",
	"instagram":         "instagram social media phone",
	"lead generation":   "sales funnel business meeting",
	"marketing":         "marketing strategy meeting",
	"neuromarketing":    "brain psychology consumer",
	"psychology":        "consumer psychology decision",
	"seo":               "search engine optimization analytics",
	"social media":      "social media marketing smartphone",
	"startup":           "startup team office",
	"web design":        "web design workspace",
	"youtube":           "video content creator studio",
	"ai活用":              "artificial intelligence technology",
	"コンテンツマーケティング":      "content creation writing",
	"デジタルマーケティング":       "digital marketing strategy laptop",
	"マーケティング":           "marketing strategy meeting",
	"集客":                "sales funnel business meeting",
	"心理学":               "consumer psychology decision",
	"ブランディング":           "brand identity design",
	"ソーシャルメディア":         "social media marketing smartphone",
	"インスタグラム":           "instagram social media phone",
	"ウェブデザイン":           "web design workspace",
	"データ分析":             "data analytics dashboard",
}

// containsOrder lists mapped keys longest first so that the most specific key
// wins a substring match.
var containsOrder = func() []string {
	keys := make([]string, 0, len(keywordQueries))
	for k := range keywordQueries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// QueryFor maps a post keyword to a photo search query
func QueryFor(keyword string) string {
	k := strings.ToLower(strings.TrimSpace(keyword))
	if k == "" {
		return GenericQuery
	}

	if q, ok := keywordQueries[k]; ok {
		return q
	}

	for _, key := range containsOrder {
		if containsKey(k, key) {
			return keywordQueries[key]
		}
	}

	return GenericQuery
}

// containsKey matches short ASCII keys only on word boundaries so that "ai"
// does not match "email".
func containsKey(s, key string) bool {
	if !isASCII(key) {
		return strings.Contains(s, key)
	}
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ')
	}) {
		padded := " " + field + " "
		if strings.Contains(padded, " "+key+" ") {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
