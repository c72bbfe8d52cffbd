package models

import (
	"slices"
	"strconv"
	"time"
)

// Document is a stored piece of site content.
type Document struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Type       string    `gorm:"not null;size:64;index" json:"type" yaml:"type"`
	Title      string    `gorm:"not null;size:512" json:"title" yaml:"title"`
	Body       string    `gorm:"type:text" json:"body" yaml:"body"`
	Status     string    `gorm:"not null;size:32;index" json:"status" yaml:"status"`
	Password   string    `gorm:"size:255" json:"-" yaml:"password"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	ModifiedAt time.Time `gorm:"index" json:"modified_at" yaml:"modified_at"`
}

func (Document) TableName() string {
	return "documents"
}

// StatusPublish is the status of publicly readable documents.
const StatusPublish = "publish"

// IsPublic reports whether anyone may read the document.
func (d Document) IsPublic() bool {
	return d.Status == StatusPublish && d.Password == ""
}

// StableID returns the document's `type-id` identifier.
func (d Document) StableID() string {
	return d.Type + "-" + strconv.FormatUint(d.ID, 10)
}

// Capabilities granted to callers.
const (
	CapabilityReadSiteContext  = "read_site_context"
	CapabilityReadPrivatePosts = "read_private_posts"
)

// Identity is the authenticated caller of a dispatch.
type Identity struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities,omitzero"`
}

// Can reports whether the identity holds a capability.
func (i Identity) Can(capability string) bool {
	return slices.Contains(i.Capabilities, capability)
}
