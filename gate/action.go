package gate

// Action is the verb half of a permission code.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// Invoice workflow verbs.
	ActionPreview Action = "preview"
	ActionClose   Action = "close"
	ActionExport  Action = "export"
)
