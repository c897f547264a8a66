package dataset

import (
	"lcaload/internal/coerce"
	"lcaload/internal/domain"
)

// WageSynonyms covers the OFLC ALC export and the OEWS flat files.
var WageSynonyms = domain.SynonymTable{
	Version: "2024.1",
	Entries: []domain.Synonym{
		{Canonical: "area_code", Variants: []string{"area", "area_code", "areacode"}},
		{Canonical: "soc_code", Variants: []string{"soccode", "soc_code", "occ_code", "soc"}},
		{Canonical: "area_name", Variants: []string{"area_name", "areaname", "area_title"}},
		{Canonical: "level_1_hourly", Variants: []string{"level1", "level_1", "level_1_hourly"}},
		{Canonical: "level_2_hourly", Variants: []string{"level2", "level_2", "level_2_hourly"}},
		{Canonical: "level_3_hourly", Variants: []string{"level3", "level_3", "level_3_hourly"}},
		{Canonical: "level_4_hourly", Variants: []string{"level4", "level_4", "level_4_hourly"}},
		{Canonical: "mean_hourly", Variants: []string{"average", "mean", "h_mean", "mean_hourly"}},
	},
}

// GeographySynonyms covers the geography lookup shipped alongside wage tables.
var GeographySynonyms = domain.SynonymTable{
	Version: "2024.1",
	Entries: []domain.Synonym{
		{Canonical: "area_code", Variants: []string{"area", "area_code", "areacode"}},
		{Canonical: "area_name", Variants: []string{"areaname", "area_name", "area_title"}},
	},
}

// hourlyToAnnual pairs each hourly column with its derived annual column.
var hourlyToAnnual = [][2]string{
	{"level_1_hourly", "level_1_annual"},
	{"level_2_hourly", "level_2_annual"},
	{"level_3_hourly", "level_3_annual"},
	{"level_4_hourly", "level_4_annual"},
	{"mean_hourly", "mean_annual"},
}

// Wage describes prevailing-wage records. Wage rows have no unique key: a
// year is cleared once at job start and re-imported wholesale.
func Wage() *domain.Dataset {
	derived := make([]string, 0, len(hourlyToAnnual))
	for _, p := range hourlyToAnnual {
		derived = append(derived, p[1])
	}
	return &domain.Dataset{
		Name:       domain.DatasetWage,
		Table:      "prevailing_wages",
		YearColumn: "wage_year",
		Fields: []domain.Field{
			{Name: "area_code", Kind: domain.FieldString, Required: true},
			{Name: "soc_code", Kind: domain.FieldString, Required: true},
			{Name: "area_name", Kind: domain.FieldString},
			{Name: "level_1_hourly", Kind: domain.FieldNumber},
			{Name: "level_2_hourly", Kind: domain.FieldNumber},
			{Name: "level_3_hourly", Kind: domain.FieldNumber},
			{Name: "level_4_hourly", Kind: domain.FieldNumber},
			{Name: "mean_hourly", Kind: domain.FieldNumber},
		},
		Derived:          derived,
		DiagnosticFields: []string{"area_code", "soc_code"},
		Policy:           domain.WritePolicyReplace,
		Synonyms:         WageSynonyms,
		ArchiveKeywords:  []string{"wage", "oews", "alc"},
		NeedsGeography:   true,
		Finalize:         finalizeWage,
	}
}

func finalizeWage(rec *domain.CanonicalRecord, env domain.JobEnv) {
	for _, p := range hourlyToAnnual {
		if hourly, ok := rec.Values[p[0]].(float64); ok {
			rec.Values[p[1]] = coerce.Annualize(hourly)
		} else {
			rec.Values[p[1]] = nil
		}
	}
	if rec.Values["area_name"] != nil {
		return
	}
	if code, ok := rec.Values["area_code"].(string); ok {
		if name, found := env.AreaNames[code]; found {
			rec.Values["area_name"] = name
		}
	}
}

// Geography describes the area-code lookup table inside wage archives.
func Geography() *domain.Dataset {
	return &domain.Dataset{
		Name: domain.DatasetGeography,
		Fields: []domain.Field{
			{Name: "area_code", Kind: domain.FieldString, Required: true},
			{Name: "area_name", Kind: domain.FieldString, Required: true},
		},
		Synonyms: GeographySynonyms,
	}
}
