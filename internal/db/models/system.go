package models

// SystemKey identifies one of the backend identity systems governed by the console.
type SystemKey string

const (
	// SystemKeycloak is the Keycloak single sign-on backend.
	SystemKeycloak SystemKey = "keycloak"
	// SystemSGR is the retail management backend (Sistema de Gestión Retail).
	SystemSGR SystemKey = "sgr"
	// SystemSIM is the inventory management backend (Sistema de Inventarios).
	SystemSIM SystemKey = "sim"
)

// SystemKeys lists every governed system in display order.
func SystemKeys() []SystemKey {
	return []SystemKey{SystemKeycloak, SystemSGR, SystemSIM}
}

// Known reports whether the key names a governed system.
func (k SystemKey) Known() bool {
	switch k {
	case SystemKeycloak, SystemSGR, SystemSIM:
		return true
	}

	return false
}

// Label returns the display name of the system as used in audit entries.
func (k SystemKey) Label() string {
	switch k {
	case SystemKeycloak:
		return "Keycloak"
	case SystemSGR:
		return "SGR"
	case SystemSIM:
		return "SIM"
	}

	return string(k)
}
