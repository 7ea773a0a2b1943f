package model

// All lists every persisted model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&GrantOpportunity{},
		&Activity{},
		&GrantApplication{},
		&ComplianceItem{},
		&Donor{},
		&Bookmark{},
		&Document{},
		&Notification{},
		&PracticeSession{},
		&Preference{},
		&OrganizationProfile{},
	}
}

// ErasureOrder lists the tenant-owned tables child-to-parent, the order in
// which account erasure deletes them. Activities go last so a partial
// erasure never loses the audit trail before the data it describes.
func ErasureOrder() []interface{} {
	return []interface{}{
		&PracticeSession{},
		&Notification{},
		&Bookmark{},
		&Document{},
		&ComplianceItem{},
		&GrantApplication{},
		&Donor{},
		&Preference{},
		&OrganizationProfile{},
		&Activity{},
	}
}
