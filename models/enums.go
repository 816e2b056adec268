package models

import (
	"strings"
)

// Department is the closed set of departments a consumption or consumer-count
// record can belong to. Stored by code; Label() is the human-readable form
// used in exports and charts.
type Department string

const (
	DepartmentProduction     Department = "production"
	DepartmentRD             Department = "rd"
	DepartmentAdministration Department = "administration"
	DepartmentLogistics      Department = "logistics"
)

var AllDepartments = []Department{
	DepartmentProduction,
	DepartmentRD,
	DepartmentAdministration,
	DepartmentLogistics,
}

func (d Department) Label() string {
	switch d {
	case DepartmentProduction:
		return "Production"
	case DepartmentRD:
		return "R&D"
	case DepartmentAdministration:
		return "Administration"
	case DepartmentLogistics:
		return "Logistics"
	}
	return string(d)
}

// ParseDepartment accepts either the stored code or the display label,
// case-insensitively. Sheets are typed by hand, so both forms show up.
func ParseDepartment(s string) (Department, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production":
		return DepartmentProduction, nil
	case "rd", "r&d":
		return DepartmentRD, nil
	case "administration":
		return DepartmentAdministration, nil
	case "logistics":
		return DepartmentLogistics, nil
	}
	return "", NewValidationError("unrecognized department %q", s)
}

// Unit is the measurement unit of an emission coefficient.
type Unit string

const (
	UnitKG Unit = "KG"
	UnitL  Unit = "L"
)

func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "KG":
		return UnitKG, nil
	case "L":
		return UnitL, nil
	}
	return "", NewValidationError("unrecognized unit %q, expected KG or L", s)
}
