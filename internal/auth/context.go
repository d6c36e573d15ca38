package auth

import "context"

type contextKey string

const (
	contextKeyRole     contextKey = "auth.role"
	contextKeyDriverID contextKey = "auth.driver_id"
	contextKeySubject  contextKey = "auth.subject"
)

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, role Role, driverID int, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeyDriverID, driverID)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	return ctx
}

func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	role, _ := ctx.Value(contextKeyRole).(Role)
	return role
}

func DriverIDFromContext(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(contextKeyDriverID).(int)
	return id
}

func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	subject, _ := ctx.Value(contextKeySubject).(string)
	return subject
}

// CanAccessDriver reports whether the caller may read or change driverID's records.
// Drivers only see their own; requests without an identity (auth disabled) pass.
func CanAccessDriver(ctx context.Context, driverID int) bool {
	switch RoleFromContext(ctx) {
	case "":
		return true
	case RoleDriver:
		return DriverIDFromContext(ctx) == driverID
	default:
		return true
	}
}
