package central

// tokenResponse is the payload of POST /v1/apitokens/generate
type tokenResponse struct {
	Token string `json:"token"`
}

// Cluster is a secured cluster as reported by GET /v1/clusters
type Cluster struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type clustersResponse struct {
	Clusters []Cluster `json:"clusters"`
}

// Standard is a built-in compliance standard
type Standard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type standardsResponse struct {
	Standards []Standard `json:"standards"`
}

// ScanSchedule is the cron-like schedule of a recurring compliance scan
type ScanSchedule struct {
	IntervalType string `json:"intervalType"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	DaysOfWeek   *Days  `json:"daysOfWeek,omitempty"`
}

// Days holds the weekday selection for a weekly schedule
type Days struct {
	Days []int `json:"days"`
}

// ScanConfigurationSpec is the nested config block of a scan
// configuration
type ScanConfigurationSpec struct {
	OneTimeScan  bool          `json:"oneTimeScan"`
	Profiles     []string      `json:"profiles"`
	ScanSchedule *ScanSchedule `json:"scanSchedule,omitempty"`
	Description  string        `json:"description,omitempty"`
}

// ScanConfiguration is a v2 compliance scan configuration. The logical
// identity is ScanName; ID is server-assigned.
type ScanConfiguration struct {
	ID         string                `json:"id,omitempty"`
	ScanName   string                `json:"scanName"`
	ScanConfig ScanConfigurationSpec `json:"scanConfig"`
	Clusters   []string              `json:"clusters"`
}

type scanConfigurationsResponse struct {
	Configurations []ScanConfiguration `json:"configurations"`
}

// Policy is a security policy summary from GET /v1/policies
type Policy struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
}

type policiesResponse struct {
	Policies []Policy `json:"policies"`
}

// ReportConfiguration is a v2 vulnerability report configuration summary
type ReportConfiguration struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reportConfigurationsResponse struct {
	ReportConfigs []ReportConfiguration `json:"reportConfigs"`
}
