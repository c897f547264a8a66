package dataset

import "lcaload/internal/domain"

// DisclosureSynonyms lists header spellings seen across disclosure years.
// The FY2008-FY2014 exports used the lca_case_* prefix; FY2015-FY2019 used
// bare names; FY2020+ suffix worksite and wage columns with _1.
var DisclosureSynonyms = domain.SynonymTable{
	Version: "2024.2",
	Entries: []domain.Synonym{
		{Canonical: "case_number", Variants: []string{"case_number", "casenum", "case_no", "lca_case_number"}},
		{Canonical: "case_status", Variants: []string{"case_status", "status", "approval_status"}},
		{Canonical: "visa_class", Variants: []string{"visa_class", "program", "program_designation", "lca_case_visa_class"}},
		{Canonical: "employer_name", Variants: []string{"employer_name", "lca_case_employer_name"}},
		{Canonical: "received_date", Variants: []string{"received_date", "case_submitted", "submitted_date", "lca_case_submit"}},
		{Canonical: "decision_date", Variants: []string{"decision_date", "decision_dt", "date_of_decision"}},
		{Canonical: "begin_date", Variants: []string{"begin_date", "employment_start_date", "period_of_employment_start_date", "lca_case_employment_start_date"}},
		{Canonical: "end_date", Variants: []string{"end_date", "employment_end_date", "period_of_employment_end_date", "lca_case_employment_end_date"}},
		{Canonical: "job_title", Variants: []string{"job_title", "lca_case_job_title"}},
		{Canonical: "soc_code", Variants: []string{"soc_code", "soc_cd", "lca_case_soc_code"}},
		{Canonical: "soc_title", Variants: []string{"soc_title", "soc_name", "lca_case_soc_name"}},
		{Canonical: "naics_code", Variants: []string{"naics_code", "naic_code", "lca_case_naics_code"}},
		{Canonical: "full_time_position", Variants: []string{"full_time_position", "full_time_pos", "full_time"}},
		{Canonical: "total_worker_positions", Variants: []string{"total_worker_positions", "total_workers", "total_worker_position"}},
		{Canonical: "employer_city", Variants: []string{"employer_city", "lca_case_employer_city"}},
		{Canonical: "employer_state", Variants: []string{"employer_state", "lca_case_employer_state"}},
		{Canonical: "employer_postal_code", Variants: []string{"employer_postal_code", "lca_case_employer_postal_code"}},
		{Canonical: "worksite_city", Variants: []string{"worksite_city", "worksite_city_1", "lca_case_workloc1_city"}},
		{Canonical: "worksite_county", Variants: []string{"worksite_county", "worksite_county_1"}},
		{Canonical: "worksite_state", Variants: []string{"worksite_state", "worksite_state_1", "lca_case_workloc1_state"}},
		{Canonical: "worksite_postal_code", Variants: []string{"worksite_postal_code", "worksite_postal_code_1"}},
		{Canonical: "wage_rate_from", Variants: []string{"wage_rate_of_pay_from", "wage_rate_of_pay_from_1", "wage_rate_of_pay", "lca_case_wage_rate_from"}},
		{Canonical: "wage_rate_to", Variants: []string{"wage_rate_of_pay_to", "wage_rate_of_pay_to_1", "lca_case_wage_rate_to"}},
		{Canonical: "wage_unit_of_pay", Variants: []string{"wage_unit_of_pay", "wage_unit_of_pay_1", "lca_case_wage_rate_unit"}},
		{Canonical: "prevailing_wage", Variants: []string{"prevailing_wage", "prevailing_wage_1", "pw_1"}},
		{Canonical: "pw_unit_of_pay", Variants: []string{"pw_unit_of_pay", "pw_unit_of_pay_1", "pw_unit_1"}},
		{Canonical: "pw_wage_level", Variants: []string{"pw_wage_level", "pw_wage_level_1", "wage_level"}},
		{Canonical: "h1b_dependent", Variants: []string{"h1b_dependent", "h-1b_dependent", "h_1b_dependent"}},
		{Canonical: "willful_violator", Variants: []string{"willful_violator"}},
		{Canonical: "agent_representing_employer", Variants: []string{"agent_representing_employer", "agent_attorney_representing_employer"}},
	},
}

// Disclosure describes labor-condition-application disclosure records.
func Disclosure() *domain.Dataset {
	return &domain.Dataset{
		Name:       domain.DatasetDisclosure,
		Table:      "lca_disclosures",
		YearColumn: "disclosure_year",
		Fields: []domain.Field{
			{Name: "case_number", Kind: domain.FieldString, Required: true},
			{Name: "case_status", Kind: domain.FieldString, Required: true},
			{Name: "visa_class", Kind: domain.FieldString, Required: true},
			{Name: "employer_name", Kind: domain.FieldString, Required: true},
			{Name: "received_date", Kind: domain.FieldDate},
			{Name: "decision_date", Kind: domain.FieldDate},
			{Name: "begin_date", Kind: domain.FieldDate},
			{Name: "end_date", Kind: domain.FieldDate},
			{Name: "job_title", Kind: domain.FieldString},
			{Name: "soc_code", Kind: domain.FieldString},
			{Name: "soc_title", Kind: domain.FieldString},
			{Name: "naics_code", Kind: domain.FieldString},
			{Name: "full_time_position", Kind: domain.FieldBool},
			{Name: "total_worker_positions", Kind: domain.FieldNumber},
			{Name: "employer_city", Kind: domain.FieldString},
			{Name: "employer_state", Kind: domain.FieldString},
			{Name: "employer_postal_code", Kind: domain.FieldString},
			{Name: "worksite_city", Kind: domain.FieldString},
			{Name: "worksite_county", Kind: domain.FieldString},
			{Name: "worksite_state", Kind: domain.FieldString},
			{Name: "worksite_postal_code", Kind: domain.FieldString},
			{Name: "wage_rate_from", Kind: domain.FieldNumber},
			{Name: "wage_rate_to", Kind: domain.FieldNumber},
			{Name: "wage_unit_of_pay", Kind: domain.FieldString},
			{Name: "prevailing_wage", Kind: domain.FieldNumber},
			{Name: "pw_unit_of_pay", Kind: domain.FieldString},
			{Name: "pw_wage_level", Kind: domain.FieldString},
			{Name: "h1b_dependent", Kind: domain.FieldBool},
			{Name: "willful_violator", Kind: domain.FieldBool},
			{Name: "agent_representing_employer", Kind: domain.FieldBool},
		},
		NaturalKey:       []string{"case_number"},
		DiagnosticFields: []string{"case_number", "employer_name"},
		Policy:           domain.WritePolicyUpsert,
		Synonyms:         DisclosureSynonyms,
		ArchiveKeywords:  []string{"lca", "disclosure", "h1b"},
	}
}
