package facts

type Permission string

const (
	PermissionOwner  Permission = "owner"
	PermissionEditor Permission = "editor"
	PermissionViewer Permission = "viewer"
)

// FieldVisibility lists what a role may do with a fact projection.
type FieldVisibility struct {
	CanMutate      bool
	SeesAllReports bool
}

var visibility = map[Permission]FieldVisibility{
	PermissionOwner:  {CanMutate: true, SeesAllReports: true},
	PermissionEditor: {CanMutate: true},
	PermissionViewer: {},
}

// Visibility returns the field table for p. Unknown values get viewer rights.
func Visibility(p Permission) FieldVisibility {
	if v, ok := visibility[p]; ok {
		return v
	}
	return visibility[PermissionViewer]
}
