package model

// LeadRequest is an inbound sales inquiry as submitted by a dealer
// website.
type LeadRequest struct {
	BranchID    string `json:"branchId"`
	WorkerCode  string `json:"workerCode,omitempty"`
	AskedCar    string `json:"askedCar,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	FromWebSite string `json:"fromWebSite,omitempty"`
	Area        string `json:"area,omitempty"`
}

// Branch is a dealership branch row from the branch workbook.
type Branch struct {
	BranchID     int    `json:"branch_id"`
	Name         string `json:"name"`
	Region       string `json:"region,omitempty"`
	City         string `json:"city,omitempty"`
	Address      string `json:"address,omitempty"`
	Manager      string `json:"manager"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	WorkingHours string `json:"working_hours,omitempty"`
	Specialties  string `json:"specialties,omitempty"`
	Languages    string `json:"languages,omitempty"`
}

// CarModel is a single entry of the car model catalog.
type CarModel struct {
	ModelID      string   `json:"model_id"`
	Brand        string   `json:"brand,omitempty"`
	Model        string   `json:"model_name,omitempty"`
	Year         string   `json:"year,omitempty"`
	Category     string   `json:"category,omitempty"`
	Engine       string   `json:"engine,omitempty"`
	PriceRange   string   `json:"price_range,omitempty"`
	FuelEconomy  string   `json:"fuel_economy,omitempty"`
	Availability string   `json:"availability,omitempty"`
	LeadTime     string   `json:"lead_time,omitempty"`
	Warranty     string   `json:"warranty,omitempty"`
	Popular      string   `json:"popular,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// Priority is the routing tier derived from a lead's score.
type Priority string

const (
	PriorityHot  Priority = "HOT"
	PriorityWarm Priority = "WARM"
	PriorityCold Priority = "COLD"
)

// LeadEnrichment is the subset of enrichment data kept on a processed
// lead.
type LeadEnrichment struct {
	City         string `json:"city,omitempty"`
	Region       string `json:"region,omitempty"`
	TrustLevel   string `json:"trust_level,omitempty"`
	Carrier      string `json:"carrier,omitempty"`
	Verified     bool   `json:"verified"`
	LeadPriority string `json:"lead_priority,omitempty"`
}

// ProcessedLeadStatus is the label stored with every processed lead.
const ProcessedLeadStatus = "Processed"

// ProcessedLead is the scored and routed result for one lead. Car and
// Enrichment are nil when the model was unknown or enrichment failed.
type ProcessedLead struct {
	OriginalLead LeadRequest     `json:"original_lead"`
	BranchInfo   Branch          `json:"branch_info"`
	CarInfo      *CarModel       `json:"car_info,omitempty"`
	Enrichment   *LeadEnrichment `json:"enrichment,omitempty"`
	Score        int             `json:"score"`
	Priority     Priority        `json:"priority"`
	AssignedTo   string          `json:"assigned_to"`
	Status       string          `json:"status"`
}
