package kernel

// ============================================================================
// Context Types
// ============================================================================

// Role de un usuario autenticado
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) IsValid() bool { return r == RoleAdmin || r == RoleCustomer }

// AuthContext es el contexto de autenticación que se inyecta en cada request
type AuthContext struct {
	UserID UserID `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsValid verifica si el AuthContext tiene un usuario y un rol conocido
func (ac *AuthContext) IsValid() bool {
	return ac != nil && !ac.UserID.IsEmpty() && ac.Role.IsValid()
}

// IsAdmin verifica si el contexto tiene permisos de administrador
func (ac *AuthContext) IsAdmin() bool {
	return ac != nil && ac.Role == RoleAdmin
}

// CanAccess reports whether the caller owns the resource or is an admin
func (ac *AuthContext) CanAccess(owner UserID) bool {
	return ac.IsAdmin() || (ac != nil && ac.UserID == owner)
}

// ============================================================================
// Context Keys
// ============================================================================

type ContextKey string

const (
	// AuthContextKey es la clave para almacenar AuthContext en fiber Locals
	AuthContextKey ContextKey = "auth"

	// RequestIDKey es la clave para almacenar el ID de la petición
	RequestIDKey ContextKey = "request_id"
)
