package miqa

import "context"

// Approver handles user interaction for approval workflows,
// particularly for destructive operations like resetting the schema.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the database name for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before dropping and
	// recreating the miqa schema in the named database.
	//
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, dbName string) (bool, error)
}
