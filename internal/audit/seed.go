package audit

// SeedRegistry returns the audit configuration for the built-in entity types.
// Deployments extend or replace this map before constructing the engine.
func SeedRegistry() Registry {
	return Registry{
		"visit": {
			Label:          "Visit",
			ExcludedFields: []string{"id", "created_at", "updated_at", "search_index"},
			SensitiveFields: map[string]MaskStrategy{
				"access_pin": MaskPresence,
			},
			LongTextFields: []string{"notes", "instructions"},
			Relations: map[string]RelationRule{
				"hosts": {
					Strategy:   StrategyComputedExpression,
					ItemType:   "host",
					Label:      "Host",
					Table:      "employees",
					Expression: "first_name || ' ' || last_name",
				},
				"departments": {
					Strategy:         StrategyTranslationJoin,
					ItemType:         "department",
					Label:            "Department",
					NameColumn:       "name",
					TranslationTable: "department_translations",
					ForeignKeyColumn: "department_id",
				},
				"tags": {
					Strategy:     StrategyDirectField,
					ItemType:     "tag",
					Label:        "Tag",
					Table:        "visit_tags",
					NameColumn:   "name",
					ExtraColumns: []string{"color"},
				},
			},
		},
		"visitor": {
			Label:          "Visitor",
			ExcludedFields: []string{"id", "created_at", "updated_at", "photo_checksum"},
			SensitiveFields: map[string]MaskStrategy{
				"id_document_number": MaskPresence,
			},
			LongTextFields: []string{"remarks"},
			Relations: map[string]RelationRule{
				"agreements": {
					Strategy:         StrategyTranslationJoin,
					ItemType:         "agreement",
					Label:            "Agreement",
					NameColumn:       "title",
					TranslationTable: "agreement_translations",
					ForeignKeyColumn: "agreement_id",
				},
			},
		},
		"company": {
			Label:          "Company",
			ExcludedFields: []string{"id", "created_at", "updated_at"},
			LongTextFields: []string{"description"},
		},
		"location": {
			Label:          "Location",
			ExcludedFields: []string{"id", "created_at", "updated_at", "kiosk_key_hash"},
			Relations: map[string]RelationRule{
				"areas": {
					Strategy:   StrategyDirectField,
					ItemType:   "area",
					Label:      "Area",
					Table:      "location_areas",
					NameColumn: "name",
				},
			},
		},
	}
}
