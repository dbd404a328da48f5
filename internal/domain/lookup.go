package domain

// BinInfo is the provider-independent result of a BIN metadata lookup.
// Every field is populated; providers missing a value contribute the
// defined fallback literal instead.
type BinInfo struct {
	Bank        string
	Brand       string
	Type        string
	Country     string
	CountryCode string
	Level       string
}

// RegistryInfo is the result of a taxpayer-registry lookup.
type RegistryInfo struct {
	Name         string
	Class        string
	IdentityType string
	UpdatedAt    string
	HasDebt      bool
	DebtStatus   string
	DebtAmount   string
}
