package client

import "time"

// Node is one row of a hierarchy table.
type Node struct {
	Label       string  `json:"label"`
	Parent      string  `json:"parent"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
	Region      string  `json:"region"`
	Institution string  `json:"institution,omitempty"`
}

// Summary describes one uploaded table.
type Summary struct {
	Source             string   `json:"source"`
	Rows               int      `json:"rows"`
	Columns            []string `json:"columns"`
	TotalRegistrations float64  `json:"total_registrations"`
	HasRegion          bool     `json:"has_region"`
}

// Report describes how a hierarchy was built.
type Report struct {
	InternRows        int      `json:"intern_rows"`
	LeadRows          int      `json:"lead_rows"`
	InternNodes       int      `json:"intern_nodes"`
	LeadNodes         int      `json:"lead_nodes"`
	SkippedRows       int      `json:"skipped_rows"`
	Duplicates        []string `json:"duplicates,omitempty"`
	UnassignedInterns int      `json:"unassigned_interns"`
	Policy            string   `json:"policy"`
}

// IngestResult is returned by Upload.
type IngestResult struct {
	SessionID string   `json:"session_id"`
	Digest    string   `json:"digest"`
	Interns   Summary  `json:"interns"`
	Leads     Summary  `json:"leads"`
	Report    Report   `json:"report"`
	Regions   []string `json:"regions"`
}

// ViewOptions filters a hierarchy view.  A nil Min means no threshold.
type ViewOptions struct {
	Region    string
	Min       *float64
	Focus     string
	Highlight string
}

// View is a filtered hierarchy table.
type View struct {
	Region  string `json:"region"`
	NoData  bool   `json:"no_data"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Rows    int    `json:"rows"`
	Table   []Node `json:"table"`
}

// ChartRecord is one sector of the sunburst chart.
type ChartRecord struct {
	Label       string  `json:"label"`
	Parent      string  `json:"parent"`
	Value       float64 `json:"value"`
	Level       string  `json:"level"`
	StateInfo   string  `json:"state_info"`
	ColorKey    string  `json:"color_key"`
	Color       string  `json:"color"`
	Highlighted bool    `json:"highlighted,omitempty"`
}

// Chart is a renderer-neutral sunburst description.
type Chart struct {
	Title   string            `json:"title"`
	NoData  bool              `json:"no_data"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Records []ChartRecord     `json:"records"`
	Palette map[string]string `json:"palette"`
}

// Entity is one ranked institution or lead.
type Entity struct {
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Total  float64 `json:"total"`
	Band   string  `json:"band"`
}

// TopOptions filters a ranking.  A nil Min uses the server default.
type TopOptions struct {
	Region string
	Min    *float64
}

// TopResult is a ranking above a threshold.
type TopResult struct {
	Region    string    `json:"region"`
	Threshold float64   `json:"threshold"`
	Options   []float64 `json:"threshold_options"`
	Entities  []Entity  `json:"entities"`
	Filename  string    `json:"filename"`
}

// RegionStats aggregates one region or all of them.
type RegionStats struct {
	Region             string  `json:"region"`
	Institutions       int     `json:"institutions"`
	TotalRegistrations float64 `json:"total_registrations"`
	TechLeads          int     `json:"tech_leads"`
	AIInterns          int     `json:"ai_interns"`
}

// InstitutionStats aggregates one institution.
type InstitutionStats struct {
	Institution        string  `json:"institution"`
	Region             string  `json:"region"`
	TotalRegistrations float64 `json:"total_registrations"`
	TechLeads          int     `json:"tech_leads"`
	AIInterns          int     `json:"ai_interns"`
	Matched            bool    `json:"matched"`
}

// LevelTotal sums one tier.
type LevelTotal struct {
	Level string  `json:"level"`
	Total float64 `json:"total"`
	Nodes int     `json:"nodes"`
}

// StatsOptions selects the statistics scope.
type StatsOptions struct {
	Region      string
	Institution string
}

// Stats is returned by Stats.
type Stats struct {
	Region      RegionStats       `json:"region"`
	Institution *InstitutionStats `json:"institution,omitempty"`
	Levels      []LevelTotal      `json:"levels"`
	Preview     []Node            `json:"preview"`
	Report      Report            `json:"report"`
}

// ExportOptions filters an export.  With Store set the server writes the
// file to object storage and only the artifact metadata is returned.
type ExportOptions struct {
	Region string
	Min    *float64
	Store  bool
}

// Export is a CSV produced by the server.  Data is empty for stored exports.
type Export struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
}

// Health is the liveness reply.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ComponentCheck is the readiness of one dependency.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Readiness is the readiness reply.
type Readiness struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
	CheckedAt  time.Time                 `json:"-"`
}

//Personal.AI order the ending
