// Пакет model — доменные модели сервиса управления случаями отсутствия.
package model

// Role — организационная роль. Допустимые значения и их старшинство
// задаются таблицей ролей политики, а не константами.
type Role string

// Роли политики по умолчанию, в порядке убывания полномочий.
const (
	RolePlatformAdmin Role = "platform_admin"
	RoleOrgAdmin      Role = "org_admin"
	RoleHR            Role = "hr"
	RoleManager       Role = "manager"
	RoleEmployee      Role = "employee"
)

// User — субъект, выполняющий действие.
// Формируется из claims JWT, в БД не хранится.
type User struct {
	// ID — sub из JWT
	ID string
	// Email — адрес электронной почты (используется проверкой super-admin)
	Email string
	// Roles — набор ролей пользователя, может быть пустым
	Roles []Role
}
