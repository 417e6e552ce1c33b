package query

import "coachapp/coaching-app/internal/domain"

// EnumFilter declares one recognized equality filter for a resource kind.
type EnumFilter struct {
	Param   string            // query-string key, e.g. "estado"
	Field   string            // bson field it filters, e.g. "status"
	Allowed []string          // allow-list; nil accepts any non-empty value (id-like params)
	Aliases map[string]string // legacy input spellings collapsed before validation
	Expand  map[string][]string
	// Expand maps a canonical value to every stored spelling it should
	// match, for fields where historical records carry a second spelling.
	Bool bool // value is "true"/"false" and the field is a bson bool
}

// Descriptor declares how one resource kind is listed: which fields are
// searchable, which filters and sort keys are recognized, and its paging
// defaults. One descriptor per kind replaces the per-handler copies of
// this logic.
type Descriptor struct {
	Kind            string
	SearchFields    []string // OR-ed case-insensitive substring match
	Enums           []EnumFilter
	TagParam        string // repeatable; "" disables tag filtering
	TagField        string // matched with contains-all semantics
	DateFromParam   string
	DateToParam     string
	DateField       string // inclusive range bounds, either end optional
	InactiveParam   string // "inactive for at least N days"
	ActivityField   string
	SortFields      []string
	DefaultSort     string
	DefaultPageSize int
}

func (d Descriptor) sortable(field string) bool {
	for _, f := range d.SortFields {
		if f == field {
			return true
		}
	}
	return false
}

var planStatusFilter = EnumFilter{
	Param:   "estado",
	Field:   "status",
	Allowed: []string{"activo", "pausado", "completado", "cancelado"},
	Aliases: map[string]string{"en pausa": "pausado"},
	Expand:  map[string][]string{"pausado": {"pausado", "en pausa"}},
}

// Clients describes the coached-client listing.
func Clients() Descriptor {
	return Descriptor{
		Kind:         "clients",
		SearchFields: []string{"name", "email", "phone"},
		Enums: []EnumFilter{
			{Param: "estado", Field: "status", Allowed: []string{"activo", "inactivo"}},
		},
		TagParam:        "etiquetas",
		TagField:        "tags",
		DateFromParam:   "fechaAltaDesde",
		DateToParam:     "fechaAltaHasta",
		DateField:       "joinedAt",
		InactiveParam:   "sinActividadDias",
		ActivityField:   "lastActivityAt",
		SortFields:      []string{"name", "status", "joinedAt", "lastActivityAt"},
		DefaultSort:     "lastActivityAt",
		DefaultPageSize: 10,
	}
}

// Exercises describes the exercise-library listing.
func Exercises() Descriptor {
	return Descriptor{
		Kind:         "exercises",
		SearchFields: []string{"name", "description", "muscleGroup"},
		Enums: []EnumFilter{
			{Param: "categoria", Field: "category"},
			{Param: "grupoMuscular", Field: "muscleGroup"},
			{Param: "nivel", Field: "level"},
		},
		TagParam:        "etiquetas",
		TagField:        "tags",
		SortFields:      []string{"name", "category", "muscleGroup", "level", "timesUsed", "lastUsed", "createdAt"},
		DefaultSort:     "name",
		DefaultPageSize: 20,
	}
}

// DietPlans describes the diet-plan listing.
func DietPlans() Descriptor {
	return Descriptor{
		Kind:         "dietPlans",
		SearchFields: []string{"name", "description"},
		Enums: []EnumFilter{
			planStatusFilter,
			{Param: "objetivo", Field: "objective", Allowed: domain.Objectives()},
			{Param: "tipoDieta", Field: "dietType", Allowed: domain.DietTypes()},
			{Param: "clienteId", Field: "clientId"},
		},
		DateFromParam:   "fechaInicioDesde",
		DateToParam:     "fechaInicioHasta",
		DateField:       "startDate",
		SortFields:      []string{"name", "startDate", "endDate", "status", "objective", "adherence", "progress", "createdAt"},
		DefaultSort:     "startDate",
		DefaultPageSize: 20,
	}
}

// DietTemplates describes the diet-template listing.
func DietTemplates() Descriptor {
	return Descriptor{
		Kind:         "dietTemplates",
		SearchFields: []string{"name", "description"},
		Enums: []EnumFilter{
			{Param: "objetivo", Field: "objective", Allowed: domain.Objectives()},
			{Param: "tipoDieta", Field: "dietType", Allowed: domain.DietTypes()},
			{Param: "is_public", Field: "isPublic", Allowed: []string{"true", "false"}, Bool: true},
		},
		TagParam:        "etiquetas",
		TagField:        "tags",
		SortFields:      []string{"name", "objective", "dietType", "calories", "uses", "lastUsed", "rating", "createdAt"},
		DefaultSort:     "name",
		DefaultPageSize: 20,
	}
}

// WorkoutTemplates describes the workout-template listing.
func WorkoutTemplates() Descriptor {
	return Descriptor{
		Kind:         "workoutTemplates",
		SearchFields: []string{"name", "description"},
		Enums: []EnumFilter{
			{Param: "objetivo", Field: "objective"},
			{Param: "nivel", Field: "level"},
			{Param: "modalidad", Field: "modality"},
			{Param: "is_public", Field: "isPublic", Allowed: []string{"true", "false"}, Bool: true},
		},
		TagParam:        "etiquetas",
		TagField:        "tags",
		SortFields:      []string{"name", "objective", "level", "modality", "uses", "lastUsed", "rating", "createdAt"},
		DefaultSort:     "name",
		DefaultPageSize: 20,
	}
}
