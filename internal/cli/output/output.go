package output

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/seguro/backend/internal/cli/api"
)

// JSON prints v as indented JSON to stdout.
func JSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// DocumentTable prints a slice of documents as a human-readable table.
func DocumentTable(docs []api.Document) {
	if len(docs) == 0 {
		fmt.Println("No documents found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCLASSIFICATION\tMODIFIED")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Title, d.Classification, RelativeTime(d.UpdatedAt))
	}
	w.Flush()
}

// DocumentDetail prints a single document with the caller's permissions.
func DocumentDetail(d api.DocumentDetailData) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Title:\t%s\n", d.Document.Title)
	fmt.Fprintf(w, "ID:\t%s\n", d.Document.ID)
	fmt.Fprintf(w, "Classification:\t%s\n", d.Document.Classification)
	if d.Document.Description != nil && *d.Document.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", *d.Document.Description)
	}
	fmt.Fprintf(w, "Owner:\t%s\n", d.Document.OwnerID)
	fmt.Fprintf(w, "Permissions:\t%s\n", PermissionString(d.Permissions))
	if d.Document.Classification == "restricted" {
		fmt.Fprintf(w, "Gate Open:\t%v\n", d.GateOpen)
	}
	fmt.Fprintf(w, "Created:\t%s\n", d.Document.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Modified:\t%s\n", d.Document.UpdatedAt.Format(time.RFC3339))
	w.Flush()
}

// SharedTable prints documents shared with the caller.
func SharedTable(entries []api.SharedDocumentData) {
	if len(entries) == 0 {
		fmt.Println("Nothing shared with you.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCLASSIFICATION\tPERMISSIONS\tEXPIRES")
	for _, e := range entries {
		expires := "-"
		if e.ExpiresAt != nil {
			expires = e.ExpiresAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Document.ID, e.Document.Title, e.Document.Classification, PermissionString(e.Permissions), expires)
	}
	w.Flush()
}

// GrantTable prints the grants on a document.
func GrantTable(grants []api.Grant) {
	if len(grants) == 0 {
		fmt.Println("No grants found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRANTEE\tPERMISSIONS\tVIA\tSTATUS\tCREATED")
	for _, g := range grants {
		grantee := g.GranteeID
		if g.Grantee != nil {
			grantee = g.Grantee.Email
		}
		status := "active"
		if g.RevokedAt != nil {
			status = "revoked"
		} else if g.ExpiresAt != nil && g.ExpiresAt.Before(time.Now()) {
			status = "expired"
		}
		perms := PermissionString(api.PermissionSet{CanView: g.CanView, CanDownload: g.CanDownload, CanEdit: g.CanEdit, CanShare: g.CanShare})
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", grantee, perms, g.Via, status, RelativeTime(g.CreatedAt))
	}
	w.Flush()
}

// LinkTable prints the share links on a document.
func LinkTable(links []api.ShareLink) {
	if len(links) == 0 {
		fmt.Println("No share links found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOKEN\tPERMISSIONS\tUSES\tSTATUS")
	for _, l := range links {
		uses := fmt.Sprintf("%d/∞", l.UsesCount)
		if l.MaxUses > 0 {
			uses = fmt.Sprintf("%d/%d", l.UsesCount, l.MaxUses)
		}
		status := "active"
		if l.RevokedAt != nil {
			status = "revoked"
		} else if l.ExpiresAt != nil && l.ExpiresAt.Before(time.Now()) {
			status = "expired"
		}
		perms := PermissionString(api.PermissionSet{CanView: l.CanView, CanDownload: l.CanDownload, CanEdit: l.CanEdit, CanShare: l.CanShare})
		fmt.Fprintf(w, "%s\t%s…\t%s\t%s\t%s\n", l.ID, l.TokenPrefix, perms, uses, status)
	}
	w.Flush()
}

// RecipientTable prints a link's authorized recipients.
func RecipientTable(recipients []api.LinkRecipient) {
	if len(recipients) == 0 {
		fmt.Println("No recipients found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tUSES\tSTATUS")
	for _, r := range recipients {
		uses := fmt.Sprintf("%d/∞", r.UsesCount)
		if r.MaxUses != nil {
			uses = fmt.Sprintf("%d/%d", r.UsesCount, *r.MaxUses)
		}
		status := "active"
		if r.RevokedAt != nil {
			status = "revoked"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Email, uses, status)
	}
	w.Flush()
}

// VersionTable prints a document's stored revisions.
func VersionTable(versions []api.DocumentVersion) {
	if len(versions) == 0 {
		fmt.Println("No versions found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tFILENAME\tSIZE\tSHA256\tUPLOADED")
	for _, v := range versions {
		fmt.Fprintf(w, "v%d\t%s\t%s\t%s…\t%s\n", v.VersionNum, v.Filename, FormatSize(v.SizeBytes), v.SHA256[:12], RelativeTime(v.CreatedAt))
	}
	w.Flush()
}

// AuditTable prints the caller's audit trail.
func AuditTable(entries []api.AuditEntry) {
	if len(entries) == 0 {
		fmt.Println("No audit entries found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tOBJECT\tIP")
	for _, e := range entries {
		object := e.ObjectType
		if e.ObjectID != nil {
			object = fmt.Sprintf("%s %s", e.ObjectType, *e.ObjectID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", RelativeTime(e.CreatedAt), e.Action, object, e.IPAddress)
	}
	w.Flush()
}

// UserInfo prints user details.
func UserInfo(u api.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Name:\t%s\n", u.FullName)
	if u.IsSecurityAdmin {
		fmt.Fprintf(w, "Role:\tsecurity admin\n")
	}
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	w.Flush()
}

// PermissionString renders a permission set as "view,download,edit,share".
func PermissionString(p api.PermissionSet) string {
	s := ""
	for _, part := range []struct {
		on   bool
		name string
	}{
		{p.CanView, "view"},
		{p.CanDownload, "download"},
		{p.CanEdit, "edit"},
		{p.CanShare, "share"},
	} {
		if !part.on {
			continue
		}
		if s != "" {
			s += ","
		}
		s += part.name
	}
	if s == "" {
		return "-"
	}
	return s
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
