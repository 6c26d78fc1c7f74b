package usecase

import (
	"context"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/utils"
)

// Directory maps normalized phone digits to roster display names
type Directory struct {
	names     map[string]string
	ambiguous map[string]bool
}

// BuildDirectory indexes users by the digits of their phone. Users without
// a phone are left out. When two users share the same digits the number
// resolves to neither of them.
func BuildDirectory(users []entity.User) Directory {
	d := Directory{
		names:     make(map[string]string, len(users)),
		ambiguous: make(map[string]bool),
	}
	for _, u := range users {
		digits := utils.Digits(u.Phone)
		if digits == "" {
			continue
		}
		name := utils.JoinName(u.FirstName, u.MiddleName, u.LastName)
		if existing, ok := d.names[digits]; ok && existing != name {
			d.ambiguous[digits] = true
			continue
		}
		d.names[digits] = name
	}
	return d
}

// Len returns the number of distinct phone numbers indexed
func (d Directory) Len() int {
	return len(d.names)
}

// Lookup returns the roster name for a phone in any format
func (d Directory) Lookup(phone string) (string, bool) {
	digits := utils.Digits(phone)
	if digits == "" || d.ambiguous[digits] {
		return "", false
	}
	name, ok := d.names[digits]
	return name, ok
}

// Resolve returns the roster name for phone, or the sheet's driver name
// with its route-code prefix removed when the phone is not on the roster.
func (d Directory) Resolve(phone, rawName string) string {
	if name, ok := d.Lookup(phone); ok {
		return name
	}
	return utils.CleanDriverName(rawName)
}

// Entries lists the directory as read-only driver entries
func (d Directory) Entries() []entity.DirectoryEntry {
	entries := make([]entity.DirectoryEntry, 0, len(d.names))
	for phone, name := range d.names {
		if d.ambiguous[phone] {
			continue
		}
		entries = append(entries, entity.DirectoryEntry{FullName: name, CellPhone: phone})
	}
	return entries
}

// LoadDirectory fetches the roster once. A failed fetch is logged and
// yields an empty directory so imports fall back to sheet names.
func LoadDirectory(ctx context.Context, roster repository.RosterGateway, log logger.Logger) Directory {
	users, err := roster.ListUsers(ctx)
	if err != nil {
		log.Warn("Failed to fetch roster, using sheet driver names", "error", err)
		return BuildDirectory(nil)
	}
	return BuildDirectory(users)
}
