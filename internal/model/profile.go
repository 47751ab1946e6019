package model

import "time"

// PipelineVersion tags profiles with the normalization pipeline release that
// produced them.
const PipelineVersion = "profile-pipeline/1.2"

// BusinessIdentity describes who the business is.
type BusinessIdentity struct {
	BusinessType           string `json:"business_type"`
	Industry               string `json:"industry"`
	BusinessSize           string `json:"business_size"`
	Location               string `json:"location"`
	BusinessStage          string `json:"business_stage"`
	ProductsServices       string `json:"products_services"`
	UniqueValueProposition string `json:"unique_value_proposition"`
	YearsInBusiness        string `json:"years_in_business"`
}

// Resources describes what the business has to work with.
type Resources struct {
	MonthlyBudget       string `json:"monthly_budget"`
	TeamStructure       string `json:"team_structure"`
	ContentCapacity     string `json:"content_capacity"`
	TechnicalSkillLevel string `json:"technical_skill_level"`
	HoursPerWeek        string `json:"hours_per_week"`
}

// Goals describes what the business wants from its marketing.
type Goals struct {
	PrimaryGoal          string   `json:"primary_goal"`
	SecondaryGoals       []string `json:"secondary_goals"`
	SuccessMetrics       string   `json:"success_metrics"`
	TimelineExpectations string   `json:"timeline_expectations"`
}

// TargetAudience describes who the business sells to.
type TargetAudience struct {
	Demographics             string `json:"demographics"`
	Locations                string `json:"locations"`
	InterestsBehavior        string `json:"interests_behavior"`
	BuyingFrequency          string `json:"buying_frequency"`
	PriceSensitivity         string `json:"price_sensitivity"`
	CommunicationPreferences string `json:"communication_preferences"`
}

// PlatformPreferences describes where and how the business posts.
type PlatformPreferences struct {
	PreferredPlatforms []string `json:"preferred_platforms"`
	PlatformExperience string   `json:"platform_experience"`
	BrandAssets        string   `json:"brand_assets"`
	FollowerCounts     string   `json:"follower_counts"`
	PostingFrequency   string   `json:"posting_frequency"`
}

// ProfileMetadata records how and when the profile was produced.
type ProfileMetadata struct {
	CreatedAt         time.Time `json:"created_at"`
	PipelineVersion   string    `json:"pipeline_version"`
	DetectedLanguage  string    `json:"detected_language"`
	ProcessingNotes   []string  `json:"processing_notes"`
	CompletenessScore float64   `json:"completeness_score"`
}

// BusinessProfile is the canonical normalized profile returned to callers.
// Every top-level group is always present; consumers check for emptiness,
// never for key absence.
type BusinessProfile struct {
	BusinessIdentity       BusinessIdentity    `json:"business_identity"`
	Resources              Resources           `json:"resources"`
	Goals                  Goals               `json:"goals"`
	TargetAudience         TargetAudience      `json:"target_audience"`
	PlatformPreferences    PlatformPreferences `json:"platform_preferences"`
	Strengths              []string            `json:"strengths"`
	Challenges             []string            `json:"challenges"`
	Opportunities          []string            `json:"opportunities"`
	MarketContext          string              `json:"market_context"`
	BrandPersonality       string              `json:"brand_personality"`
	MissingDataAssumptions map[string]string   `json:"missing_data_assumptions"`
	ProfileMetadata        ProfileMetadata     `json:"profile_metadata"`
}

// NewBusinessProfile returns an empty profile template with every group
// initialized, so serialized output always carries all top-level keys.
func NewBusinessProfile() *BusinessProfile {
	return &BusinessProfile{
		Goals:                  Goals{SecondaryGoals: []string{}},
		PlatformPreferences:    PlatformPreferences{PreferredPlatforms: []string{}},
		Strengths:              []string{},
		Challenges:             []string{},
		Opportunities:          []string{},
		MissingDataAssumptions: map[string]string{},
		ProfileMetadata:        ProfileMetadata{ProcessingNotes: []string{}},
	}
}

// Analysis is the result of the rule-only extraction pass. All fields may be
// empty; analysis never fails.
type Analysis struct {
	BusinessType   string   `json:"business_type"`
	Location       string   `json:"location"`
	Platforms      []string `json:"platforms"`
	Budget         string   `json:"budget"`
	Challenges     []string `json:"challenges"`
	Strengths      []string `json:"strengths"`
	NormalizedText string   `json:"normalized_text"`
}

// ProfileRecord wraps a built profile for storage.
type ProfileRecord struct {
	ID           string           `json:"id"`
	SubmissionID string           `json:"submission_id,omitempty"`
	Profile      *BusinessProfile `json:"profile"`
	CreatedAt    time.Time        `json:"created_at"`
}
