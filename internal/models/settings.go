package models

import "time"

// DesignSettings holds the admin-editable branding document.
type DesignSettings struct {
	LogoURL        string    `json:"logoUrl"`
	HeroImageURLs  []string  `json:"heroImageUrls,omitempty"`
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	FontFamily     string    `json:"fontFamily"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

// DefaultDesignSettings are served until an admin customizes the design.
func DefaultDesignSettings() DesignSettings {
	return DesignSettings{
		PrimaryColor:   "#8B5CF6",
		SecondaryColor: "#0EA5E9",
		FontFamily:     "Inter",
	}
}

// AppSettings holds the admin-editable copy and contact document.
type AppSettings struct {
	HeroTitle      string    `json:"heroTitle"`
	HeroSubtitle   string    `json:"heroSubtitle"`
	ContactEmail   string    `json:"contactEmail"`
	ContactPhone   string    `json:"contactPhone"`
	FeedbackPrompt string    `json:"feedbackPrompt"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

// DefaultAppSettings are served until an admin customizes the copy.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		HeroTitle:      "Your Photo Gallery",
		HeroSubtitle:   "Select your favorite moments",
		FeedbackPrompt: "We value your feedback",
	}
}

// Settings document keys.
const (
	SettingsKeyDesign = "design"
	SettingsKeyApp    = "app"
)
