package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Board constraints
	MaxNodesPerBoard int
	MaxEdgesPerBoard int
	DefaultBoardName string

	// Editing behavior
	HistoryDepth     int
	AutosaveDebounce time.Duration
	MaxImportBytes   int

	// Node constraints
	MaxNameLength        int
	MaxDescriptionLength int
	MaxDataBytesPerNode  int

	// Validation settings
	AllowSelfConnections bool
	AllowDuplicateEdges  bool

	// Feature flags
	EnableOnboardingGuides bool
	EnableBoardThumbnails  bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Board constraints
		MaxNodesPerBoard: 10000,
		MaxEdgesPerBoard: 50000,
		DefaultBoardName: "Untitled Board",

		// Editing behavior
		HistoryDepth:     100,
		AutosaveDebounce: 2 * time.Second,
		MaxImportBytes:   10 * 1024 * 1024,

		// Node constraints
		MaxNameLength:        200,
		MaxDescriptionLength: 2000,
		MaxDataBytesPerNode:  64 * 1024,

		// Validation settings
		AllowSelfConnections: false,
		AllowDuplicateEdges:  true,

		// Feature flags
		EnableOnboardingGuides: true,
		EnableBoardThumbnails:  true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxNodesPerBoard = 5000
	config.MaxEdgesPerBoard = 25000
	config.MaxImportBytes = 5 * 1024 * 1024

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxNodesPerBoard = 100000
	config.MaxEdgesPerBoard = 500000
	config.AllowSelfConnections = true

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
