// Package validation valida los nombres que llegan por el surface
// administrativo.
package validation

import "regexp"

// Reglas del nombre de departamento:
//   - Empieza y termina en [A-Za-z0-9].
//   - Los caracteres intermedios admiten espacio, guión, punto, "&" y "_"
//     (los nombres vienen del claim del IdP tal cual: "Risorse Umane",
//     "R&D", "IT-Ops").
//   - Largo 1..64.
//   - Excluye explícitamente "/" y caracteres de control: el nombre es
//     también slug del grupo y viaja en la URL del admin API.
var departmentNameRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9 &_.\-]{0,62}[A-Za-z0-9])?$`)

// ValidDepartmentName reporta si el nombre cumple el patrón permitido.
func ValidDepartmentName(name string) bool {
	return departmentNameRe.MatchString(name)
}
