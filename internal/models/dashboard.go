package models

// Dashboard response types. Field names mirror what the charts consume.

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

type Trend struct {
	Value     int            `json:"value"`
	Direction TrendDirection `json:"direction"`
}

type KeyMetrics struct {
	TotalLeads      int   `json:"totalLeads"`
	Trend           Trend `json:"trend"`
	UnfilteredTotal int   `json:"unfilteredTotal"`
}

type LeadSourceCount struct {
	Name     string `json:"name"`
	Contacts int    `json:"contacts"`
}

type GrowthPoint struct {
	Date  string `json:"date"`
	Leads int    `json:"leads"`
}

type LocationCount struct {
	Location string `json:"location"`
	Leads    int    `json:"leads"`
}

type ZipCodeCount struct {
	ZipCode string `json:"zipCode"`
	Leads   int    `json:"leads"`
}

type AgentBucket struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type TrafficSource struct {
	Source string `json:"source"`
	Leads  int    `json:"leads"`
}

type Campaign struct {
	Campaign string `json:"campaign"`
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Leads    int    `json:"leads"`
}

type RatingBucket struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// Engagement carries interaction-derived scores. These are heuristics over
// interaction counts, not measured outcomes; Approximate is always true so
// consumers can label them accordingly.
type Engagement struct {
	QualityScore     int  `json:"qualityScore"`
	EngagementScore  int  `json:"engagementScore"`
	EmailCoverage    int  `json:"emailCoverage"`
	LikelyAgentShare int  `json:"likelyAgentShare"`
	Approximate      bool `json:"approximate"`
}

type ActiveFilters struct {
	ExcludedSources  []string `json:"excludedSources"`
	ExcludeAgents    bool     `json:"excludeAgents"`
	ExcludeNoSource  bool     `json:"excludeNoSource"`
	FilteredOutCount int      `json:"filteredOutCount"`
}

// Dashboard is the full aggregate payload. Recomputed in full on every cache
// miss, never patched in place.
type Dashboard struct {
	KeyMetrics         KeyMetrics               `json:"keyMetrics"`
	LeadSources        []LeadSourceCount        `json:"leadSources"`
	LeadGrowth         []GrowthPoint            `json:"leadGrowth"`
	LeadGrowthBySource map[string][]GrowthPoint `json:"leadGrowthBySource"`
	LeadsByLocation    []LocationCount          `json:"leadsByLocation"`
	LeadsByZipCode     []ZipCodeCount           `json:"leadsByZipCode"`
	AgentDistribution  []AgentBucket            `json:"agentDistribution"`
	TrafficSources     []TrafficSource          `json:"trafficSources"`
	TopCampaigns       []Campaign               `json:"topCampaigns"`
	RatingDistribution []RatingBucket           `json:"ratingDistribution"`
	PipelineFunnel     []FunnelStage            `json:"pipelineFunnel"`
	Engagement         *Engagement              `json:"engagement,omitempty"`
	AvailableSources   []string                 `json:"availableSources"`
	ActiveFilters      ActiveFilters            `json:"activeFilters"`
}

// FilterPreset is a saved exclusion set. The web client also keeps these in
// local storage; the server copy exists so presets follow the user across
// browsers for the lifetime of the process.
type FilterPreset struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ExcludedSources []string `json:"excludedSources"`
	ExcludeAgents   bool     `json:"excludeAgents"`
	ExcludeNoSource bool     `json:"excludeNoSource"`
	CreatedAt       string   `json:"createdAt"`
}
