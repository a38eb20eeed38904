package complaint

import (
	"strings"

	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/SaiNageswarS/shop-assistant/db"
)

// MergeTags returns the union of existing and incoming tags, keeping first-seen order.
// Tags are compared after trimming and lowercasing.
func MergeTags(existing []string, incoming ...[]string) []string {
	seen := ds.NewSet[string]()
	merged := make([]string, 0, len(existing))

	add := func(tags []string) {
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || seen.Contains(tag) {
				continue
			}
			seen.Add(tag)
			merged = append(merged, tag)
		}
	}

	add(existing)
	for _, tags := range incoming {
		add(tags)
	}
	return merged
}

// Extraction is one turn's validated view of the complaint.
type Extraction struct {
	Description string
	Contact     db.CustomerContact
	Priority    db.ComplaintPriority
	Tags        []string
}

// ApplyToDraft folds an extraction into the session's draft. Non-empty fields win.
func ApplyToDraft(d *db.ComplaintDraftModel, e Extraction, now int64) {
	if e.Description != "" {
		d.Description = e.Description
	}
	if e.Contact.Email != "" {
		d.CustomerContact.Email = e.Contact.Email
	}
	if e.Contact.Phone != "" {
		d.CustomerContact.Phone = e.Contact.Phone
	}
	if e.Priority != "" {
		d.Priority = e.Priority
	}
	d.Tags = MergeTags(d.Tags, e.Tags)
	d.Active = true
	d.UpdatedOn = now
}

// ApplyToComplaint folds an extraction (and any pending draft) into a complaint.
func ApplyToComplaint(c *db.ComplaintModel, draft *db.ComplaintDraftModel, e Extraction, now int64) {
	if draft != nil && draft.Active {
		c.SetDescription(draft.Description)
		mergeContact(&c.CustomerContact, draft.CustomerContact)
		if draft.Priority != "" {
			c.Priority = draft.Priority
		}
		c.Tags = MergeTags(c.Tags, draft.Tags)
	}

	c.SetDescription(e.Description)
	mergeContact(&c.CustomerContact, e.Contact)
	if e.Priority != "" {
		c.Priority = e.Priority
	}
	c.Tags = MergeTags(c.Tags, e.Tags)
	c.UpdatedOn = now
}

func mergeContact(dst *db.CustomerContact, src db.CustomerContact) {
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
}
