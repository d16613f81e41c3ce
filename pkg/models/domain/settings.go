package domain

// Branding holds the company identity printed on invoices. Stored as a named
// JSON document in the local store.
type Branding struct {
	CompanyName string `json:"companyName"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	LogoURL     string `json:"logoUrl"`
	AccentColor string `json:"accentColor"`
}

// Template controls invoice layout and numbering.
type Template struct {
	Layout       string `json:"layout"`
	NumberPrefix string `json:"numberPrefix"`
	FooterText   string `json:"footerText"`
	ShowLogo     bool   `json:"showLogo"`
}
