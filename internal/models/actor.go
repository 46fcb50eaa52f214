package models

// RoleAdmin видит и изменяет клиентов всех пользователей.
const RoleAdmin = "admin"

// Actor: аутентифицированный пользователь, от имени которого выполняется операция.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin сообщает, есть ли у пользователя доступ ко всем клиентам.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess сообщает, может ли пользователь работать с клиентом.
func (a Actor) CanAccess(c *Client) bool {
	return a.IsAdmin() || c.UserID == a.UserID
}

// ClientQuery: параметры списка клиентов, пришедшие из запроса.
type ClientQuery struct {
	Active *bool
	Search string
	Limit  int
	Offset int
}
