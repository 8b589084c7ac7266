// models.go this is our database models
package main

import "gorm.io/datatypes"

// Timestamps are epoch milliseconds written by the workflow, not the database.

type Skill struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Image        string `json:"image,omitempty"`
	ImageAssetID string `json:"imageAssetId,omitempty"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt    int64  `gorm:"autoUpdateTime:milli" json:"updatedAt,omitempty"`
}

type Project struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Title       string         `json:"title"`
	Problem     string         `json:"problem"`
	Description string         `json:"description"` // markdown
	Skills      datatypes.JSON `json:"skills"`      // skill ids, not enforced
	GithubURL   string         `gorm:"column:github_url" json:"githubUrl"`
	DemoURL     string         `gorm:"column:demo_url" json:"demoUrl"`
	Tagline     string         `json:"tagline"`
	Image       string         `json:"image,omitempty"`
	// ImageAssetID is the media host handle for Image.
	ImageAssetID string `json:"imageAssetId,omitempty"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt    int64  `gorm:"autoUpdateTime:milli" json:"updatedAt,omitempty"`
}

type Article struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Title        string `json:"title"`
	Tagline      string `json:"tagline"`
	Description  string `json:"description"` // markdown
	Image        string `json:"image,omitempty"`
	ImageAssetID string `json:"imageAssetId,omitempty"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt    int64  `gorm:"autoUpdateTime:milli" json:"updatedAt,omitempty"`
}

// Resume is a singleton; the upsert workflow keeps at most one row.
type Resume struct {
	ID        string `gorm:"primaryKey" json:"id"`
	URL       string `gorm:"column:url" json:"url"`
	AssetID   string `json:"assetId,omitempty"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli" json:"updatedAt,omitempty"`
}

func (Resume) TableName() string { return "resume" }

// FailedCleanup is the dead letter for an asset removal that did not succeed.
type FailedCleanup struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Collection string `json:"collection"`
	RecordID   string `json:"recordId"`
	PublicID   string `json:"publicId"`
	Reason     string `json:"reason"`
	CreatedAt  int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
}
