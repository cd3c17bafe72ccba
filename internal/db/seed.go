package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-workhours/internal/models"
	"gorm.io/gorm"
)

// permissionSeeds lists every resource:action pair the API checks.
var permissionSeeds = []struct {
	ResourceType string
	Action       string
	Description  string
}{
	{"*", "*", "Full system access"},

	{"invoice", "*", "All invoice actions"},
	{"invoice", "list", "List invoices"},
	{"invoice", "view", "View invoice details"},
	{"invoice", "preview", "Preview a month before closing"},
	{"invoice", "export", "Download a month as CSV"},
	{"invoice", "close", "Close a month into an invoice"},
	{"invoice", "update", "Change invoice status"},
	{"invoice", "delete", "Delete invoices"},

	{"worklog", "*", "All worklog actions on any entry"},
	{"worklog", "list", "List worklogs"},
	{"worklog", "view", "View worklog details"},
	{"worklog", "create", "Log time"},
	{"worklog", "update", "Edit own worklogs"},
	{"worklog", "delete", "Delete own worklogs"},

	{"project", "*", "All project actions"},
	{"project", "list", "List projects"},
	{"project", "view", "View project details"},
	{"project", "create", "Create projects"},
	{"project", "update", "Edit projects"},
	{"project", "delete", "Deactivate projects"},

	{"checklist", "*", "All checklist actions"},
	{"checklist", "list", "List checklist items"},
	{"checklist", "view", "View checklist items"},
	{"checklist", "create", "Add checklist items"},
	{"checklist", "update", "Edit and tick checklist items"},
	{"checklist", "delete", "Remove checklist items"},

	{"master", "*", "All master data actions"},
	{"master", "list", "List master data"},
	{"master", "view", "View master data"},
	{"master", "create", "Create master rows"},
	{"master", "update", "Edit master rows"},
	{"master", "delete", "Delete master rows"},

	{"user", "*", "All user administration"},
	{"user", "list", "List users and profiles"},
	{"user", "update", "Assign profiles, activate and deactivate users"},
	{"user", "delete", "Delete users"},
}

var profileSeeds = []struct {
	Name        string
	Description string
	Permissions []string
}{
	{
		Name:        "admin",
		Description: "Full system administrator with all permissions",
		Permissions: []string{"*:*"},
	},
	{
		Name:        "engineer",
		Description: "Logs time, maintains projects, previews and exports invoices",
		Permissions: []string{
			"worklog:list", "worklog:view", "worklog:create", "worklog:update", "worklog:delete",
			"project:list", "project:view", "project:create", "project:update",
			"checklist:list", "checklist:view", "checklist:create", "checklist:update", "checklist:delete",
			"master:list", "master:view",
			"invoice:list", "invoice:view", "invoice:preview", "invoice:export",
		},
	},
	{
		Name:        "viewer",
		Description: "Read-only access",
		Permissions: []string{
			"worklog:list", "worklog:view",
			"project:list", "project:view",
			"checklist:list", "checklist:view",
			"master:list", "master:view",
			"invoice:list", "invoice:view",
		},
	},
}

// SeedPermissions creates the permission rows. It is idempotent.
func SeedPermissions(db *gorm.DB) error {
	for _, p := range permissionSeeds {
		perm := models.Permission{
			ResourceType: p.ResourceType,
			Action:       p.Action,
			Description:  p.Description,
		}
		err := db.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&perm).Error
		if err != nil {
			return fmt.Errorf("seed permission %s: %w", perm.Code(), err)
		}
	}
	return nil
}

// SeedProfiles creates the system profiles and (re)assigns their permissions.
func SeedProfiles(db *gorm.DB) error {
	if err := SeedPermissions(db); err != nil {
		return err
	}

	for _, p := range profileSeeds {
		profile := models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
		if err := db.Where("name = ?", p.Name).FirstOrCreate(&profile).Error; err != nil {
			return fmt.Errorf("seed profile %s: %w", p.Name, err)
		}

		perms := make([]models.Permission, 0, len(p.Permissions))
		for _, code := range p.Permissions {
			resource, action, ok := models.SplitCode(code)
			if !ok {
				return fmt.Errorf("malformed permission code %q", code)
			}
			var perm models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err != nil {
				return fmt.Errorf("load permission %s: %w", code, err)
			}
			perms = append(perms, perm)
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("assign permissions to %s: %w", p.Name, err)
		}
	}
	return nil
}

// SeedMasters inserts the default lookup rows that are missing. Existing rows,
// including edited ones, are left alone.
func SeedMasters(db *gorm.DB) error {
	progress := []models.ProgressStatus{
		{MasterBase: base(10, "#9e9e9e"), StatusName: "not_started"},
		{MasterBase: base(20, "#2196f3"), StatusName: models.ProjectStatusInProgress, StartDateTrigger: true},
		{MasterBase: base(30, "#ff9800"), StatusName: "on_hold"},
		{MasterBase: base(40, "#4caf50"), StatusName: "completed", CompletionTrigger: true},
	}
	for i := range progress {
		if err := seedMaster(db, &progress[i]); err != nil {
			return err
		}
	}

	categories := []models.WorkCategory{
		{MasterBase: base(10, ""), CategoryName: "design"},
		{MasterBase: base(20, ""), CategoryName: "wiring"},
		{MasterBase: base(30, ""), CategoryName: "harness"},
		{MasterBase: base(40, ""), CategoryName: "outsourcing"},
	}
	for i := range categories {
		if err := seedMaster(db, &categories[i]); err != nil {
			return err
		}
	}

	inquiries := []models.InquiryStatus{
		{MasterBase: base(10, "#ffeb3b"), StatusName: "open"},
		{MasterBase: base(20, "#03a9f4"), StatusName: "answered"},
		{MasterBase: base(30, "#9e9e9e"), StatusName: "closed"},
	}
	for i := range inquiries {
		if err := seedMaster(db, &inquiries[i]); err != nil {
			return err
		}
	}

	series := []models.MachineSeries{
		{MasterBase: base(10, ""), SeriesName: "NEX", DisplayName: "NEX series", Category: "injection"},
		{MasterBase: base(20, ""), SeriesName: "FNX", DisplayName: "FNX series", Category: "injection"},
		{MasterBase: base(30, ""), SeriesName: "TNS", DisplayName: "TNS series", Category: "vertical"},
	}
	for i := range series {
		if err := seedMaster(db, &series[i]); err != nil {
			return err
		}
	}
	return nil
}

func base(sort int, color string) models.MasterBase {
	return models.MasterBase{SortOrder: sort, BackgroundColor: color, IsActive: true}
}

func seedMaster[P models.MasterRecord](db *gorm.DB, row P) error {
	err := db.Where(row.NameColumn()+" = ?", row.MasterName()).FirstOrCreate(row).Error
	if err != nil {
		return fmt.Errorf("seed %s %q: %w", row.NameColumn(), row.MasterName(), err)
	}
	return nil
}

// SeedUser makes sure a user with email exists and holds the named profile.
func SeedUser(db *gorm.DB, email, name, profileName string) (*models.User, error) {
	var profile models.Profile
	if err := db.Where("name = ?", profileName).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %q not seeded", profileName)
		}
		return nil, err
	}

	user := models.User{Email: email, Name: name, IsActive: true}
	if err := db.Where("email = ?", email).FirstOrCreate(&user).Error; err != nil {
		return nil, fmt.Errorf("seed user %s: %w", email, err)
	}
	if user.ProfileID == nil || *user.ProfileID != profile.ID {
		if err := db.Model(&user).Update("profile_id", profile.ID).Error; err != nil {
			return nil, err
		}
		user.ProfileID = &profile.ID
	}
	return &user, nil
}

// Seed runs every seeder in dependency order.
func Seed(db *gorm.DB) error {
	if err := SeedProfiles(db); err != nil {
		return err
	}
	return SeedMasters(db)
}
