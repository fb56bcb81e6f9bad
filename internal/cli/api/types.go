package api

import "time"

// User mirrors the backend User model.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName"`
	IsSecurityAdmin bool      `json:"isSecurityAdmin"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Document mirrors the backend Document model fields relevant to the CLI.
type Document struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Classification string    `json:"classification"`
	OwnerID        string    `json:"ownerID"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PermissionSet mirrors the backend capability booleans.
type PermissionSet struct {
	CanView     bool `json:"canView"`
	CanDownload bool `json:"canDownload"`
	CanEdit     bool `json:"canEdit"`
	CanShare    bool `json:"canShare"`
}

// Grant mirrors the backend DocumentGrant model.
type Grant struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"documentID"`
	GranteeID   string     `json:"granteeID"`
	CanView     bool       `json:"canView"`
	CanDownload bool       `json:"canDownload"`
	CanEdit     bool       `json:"canEdit"`
	CanShare    bool       `json:"canShare"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
	Via         string     `json:"via"`
	Grantee     *User      `json:"grantee,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ShareLink mirrors the backend ShareLink model. Only the token prefix is
// ever listed; the full token exists exactly once in CreateLinkData.
type ShareLink struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"documentID"`
	TokenPrefix string     `json:"tokenPrefix"`
	CanView     bool       `json:"canView"`
	CanDownload bool       `json:"canDownload"`
	CanEdit     bool       `json:"canEdit"`
	CanShare    bool       `json:"canShare"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	MaxUses     int        `json:"maxUses"`
	UsesCount   int        `json:"usesCount"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LinkRecipient mirrors the backend ShareLinkRecipient model.
type LinkRecipient struct {
	ID          string     `json:"id"`
	LinkID      string     `json:"linkID"`
	Email       string     `json:"email"`
	CanView     bool       `json:"canView"`
	CanDownload bool       `json:"canDownload"`
	MaxUses     *int       `json:"maxUses,omitempty"`
	UsesCount   int        `json:"usesCount"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
}

// DocumentVersion mirrors the backend DocumentVersion model.
type DocumentVersion struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentID"`
	VersionNum int       `json:"versionNum"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	SHA256     string    `json:"sha256"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LoginData is returned by POST /auth/login.
type LoginData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateDocumentData is returned by POST /documents. The restricted password
// and public token appear here once and are never retrievable again.
type CreateDocumentData struct {
	Document           Document `json:"document"`
	RestrictedPassword string   `json:"restrictedPassword,omitempty"`
	PublicToken        string   `json:"publicToken,omitempty"`
}

// DocumentDetailData is returned by GET /documents/:id.
type DocumentDetailData struct {
	Document    Document      `json:"document"`
	Permissions PermissionSet `json:"permissions"`
	GateOpen    bool          `json:"gateOpen"`
}

// SharedDocumentData is one entry from GET /documents/shared.
type SharedDocumentData struct {
	Document    Document      `json:"document"`
	Permissions PermissionSet `json:"permissions"`
	ExpiresAt   *time.Time    `json:"expiresAt,omitempty"`
}

// CreateLinkData is returned by POST /documents/:id/links.
type CreateLinkData struct {
	Link  ShareLink `json:"link"`
	Token string    `json:"token"`
}

// VerifyPasswordData is returned by POST /documents/:id/verify-password.
type VerifyPasswordData struct {
	GateToken string `json:"gateToken"`
	ExpiresAt string `json:"expiresAt"`
}

// DownloadURLData is returned by GET /documents/:id/download-url.
type DownloadURLData struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// AuditEntry is one row from GET /audit-log.
type AuditEntry struct {
	ID         string                 `json:"id"`
	Action     string                 `json:"action"`
	ObjectType string                 `json:"objectType"`
	ObjectID   *string                `json:"objectID,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	IPAddress  string                 `json:"ipAddress"`
	CreatedAt  time.Time              `json:"createdAt"`
}
