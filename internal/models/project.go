package models

// Release holds the latest release information from a DOAP descriptor
type Release struct {
	Version     string `json:"version"`
	Date        string `json:"date"`
	DownloadURL string `json:"download_url,omitempty"`
}

// PageMetadata holds structured signals scraped from a single web page
type PageMetadata struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	H1Headers       []string `json:"h1_headers"`
	Links           []string `json:"links"`
	Logo            string   `json:"logo,omitempty"`
}

// SimilarProject is one entry of a record's similarity neighbor list
type SimilarProject struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Enrichment holds the fields an LLM backend may add to a project record.
// All fields are optional; a failed parse leaves the record untouched.
type Enrichment struct {
	EnhancedDescription string   `json:"enhanced_description"`
	KeyFeatures         []string `json:"key_features"`
	RelatedProjects     []string `json:"related_projects"`
	RefinedCategory     string   `json:"refined_category"`
	AdditionalInsights  string   `json:"additional_insights"`
}

// Project represents one Apache project assembled by a pipeline run.
// Core fields come from the DOAP descriptor; derived fields are appended
// by the scrape, crawl, similarity and enrichment stages in that order.
type Project struct {
	Name                string   `json:"name"`
	ShortDesc           string   `json:"shortdesc"`
	Description         string   `json:"description"`
	Category            string   `json:"category"`
	ProgrammingLanguage string   `json:"programming_language"`
	Homepage            string   `json:"homepage,omitempty"`
	DownloadPage        string   `json:"download_page,omitempty"`
	BugDatabase         string   `json:"bug_database,omitempty"`
	MailingList         string   `json:"mailing_list,omitempty"`
	LatestRelease       *Release `json:"latest_release,omitempty"`

	HomepageMetadata  *PageMetadata    `json:"homepage_metadata,omitempty"`
	DownloadMetadata  *PageMetadata    `json:"download_metadata,omitempty"`
	Logo              string           `json:"logo,omitempty"`
	AdditionalContent string           `json:"additional_content,omitempty"`
	ExtractedFeatures []string         `json:"extracted_features,omitempty"`
	SimilarProjects   []SimilarProject `json:"similar_projects,omitempty"`

	EnhancedDescription string   `json:"enhanced_description,omitempty"`
	KeyFeatures         []string `json:"key_features,omitempty"`
	RelatedProjects     []string `json:"related_projects,omitempty"`
	RefinedCategory     string   `json:"refined_category,omitempty"`
	AdditionalInsights  string   `json:"additional_insights,omitempty"`
}

// ApplyEnrichment merges LLM-provided fields into the record. Empty
// values are skipped so enrichment never erases existing data.
func (p *Project) ApplyEnrichment(e *Enrichment) {
	if e == nil {
		return
	}
	if e.EnhancedDescription != "" {
		p.EnhancedDescription = e.EnhancedDescription
	}
	if len(e.KeyFeatures) > 0 {
		p.KeyFeatures = e.KeyFeatures
	}
	if len(e.RelatedProjects) > 0 {
		p.RelatedProjects = e.RelatedProjects
	}
	if e.RefinedCategory != "" {
		p.RefinedCategory = e.RefinedCategory
	}
	if e.AdditionalInsights != "" {
		p.AdditionalInsights = e.AdditionalInsights
	}
}

// SimilarityText is the text bag used by the similarity engine: the
// concatenation of name, short description and long description.
func (p *Project) SimilarityText() string {
	return p.Name + " " + p.ShortDesc + " " + p.Description
}

// CollectStats tracks per-stage processing counts for a pipeline run
type CollectStats struct {
	Total     int
	Succeeded int
	Failed    int
}
