package domain

// FeedConfig describes a single configured feed. Loaded once at startup,
// never mutated afterwards.
type FeedConfig struct {
	Category string `yaml:"category" json:"category" jsonschema:"required,description=Display label and classification dimension"`
	URL      string `yaml:"url" json:"url" jsonschema:"required,description=Feed source URL"`
	Language string `yaml:"language,omitempty" json:"language,omitempty" jsonschema:"description=Optional language tag"`
}

// FetchResult is the outcome of fetching one feed. Failure is a value, not
// an error: a bad feed contributes an empty item list and a reason string
// instead of aborting the run.
type FetchResult struct {
	Success  bool
	Category string
	Items    []NewsItem
	Error    string
}
