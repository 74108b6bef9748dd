package entity

import (
	"fmt"
	"strings"
)

// Role is the closed set of actor roles. Raw role strings are normalized once,
// by ParseRole, at the authentication boundary.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleClient
	RoleAgent
	RoleDriver
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleClient:
		return "client"
	case RoleAgent:
		return "agent"
	case RoleDriver:
		return "driver"
	default:
		return "unknown"
	}
}

func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrador", "administrator":
		return RoleAdmin, nil
	case "client", "cliente":
		return RoleClient, nil
	case "agent", "agenciador", "agente":
		return RoleAgent, nil
	case "driver", "motorista":
		return RoleDriver, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", raw)
}

// Actor is the already-authenticated caller of a mutating operation.
type Actor struct {
	Id       int64
	Role     Role
	ClientId *int64
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsDriver() bool {
	return a.Role == RoleDriver
}
