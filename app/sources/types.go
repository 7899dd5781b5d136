package sources

// Source configuration types, loaded from per-source YAML files.

const (
	TypeRSS = "rss"
	TypeAPI = "api"
)

type Config struct {
	Name        string      // Derived from filename (without .yml extension)
	URL         string      `yaml:"url"`
	Type        string      `yaml:"type"`
	Settings    Settings    `yaml:"settings"`
	Defaults    Defaults    `yaml:"defaults"`
	Credentials Credentials `yaml:"credentials"`
}

type Settings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxRecords      int  `yaml:"max_records"`
	Timeout         int  `yaml:"timeout"`        // seconds
	EnrichContent   bool `yaml:"enrich_content"` // fill thin descriptions from the posting page
}

// Defaults fill mandatory listing fields a provider omits, so recall is not
// lost to sparse records.
type Defaults struct {
	Title    string `yaml:"title"`
	Company  string `yaml:"company"`
	Location string `yaml:"location"`
}

// Credentials are only used by API-type sources.
type Credentials struct {
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
	Country string `yaml:"country"`
}
