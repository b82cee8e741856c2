package enrich

import "time"

// Request carries the contact identifiers sent to the enrichment API.
type Request struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Area  string `json:"area"`
}

// Response is the enrichment API reply. Data is only set when Enriched
// is true; Error explains an explicit refusal.
type Response struct {
	Enriched bool   `json:"enriched"`
	Data     *Data  `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Data struct {
	Geographic      *Geographic      `json:"geographic,omitempty"`
	EmailInsights   *EmailInsights   `json:"emailInsights,omitempty"`
	PhoneInsights   *PhoneInsights   `json:"phoneInsights,omitempty"`
	CustomerProfile *CustomerProfile `json:"customerProfile,omitempty"`
	LeadPriority    string           `json:"leadPriority,omitempty"`
	EnrichedAt      *time.Time       `json:"enrichedAt,omitempty"`
}

type Geographic struct {
	City            string `json:"city,omitempty"`
	Region          string `json:"region,omitempty"`
	Population      string `json:"population,omitempty"`
	MarketPotential string `json:"marketPotential,omitempty"`
}

type EmailInsights struct {
	CustomerType  string `json:"customerType,omitempty"`
	TrustLevel    string `json:"trustLevel,omitempty"`
	BusinessEmail bool   `json:"businessEmail"`
}

type PhoneInsights struct {
	Carrier  string `json:"carrier,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Verified bool   `json:"verified"`
}

type CustomerProfile struct {
	LikelyFirstTimeBuyer   bool   `json:"likelyFirstTimeBuyer"`
	InterestLevel          string `json:"interestLevel,omitempty"`
	RecommendedContactTime string `json:"recommendedContactTime,omitempty"`
}
