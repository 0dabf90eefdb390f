package domain

// Section identifies a content section. Values match the rows stored in the
// prompts and readings tables.
type Section string

const (
	SectionSoulMission           Section = "missao_da_alma"
	SectionPersonality           Section = "personalidade"
	SectionDestiny               Section = "destino"
	SectionPurpose               Section = "proposito"
	SectionMaterialManifestation Section = "manifestacao_material"

	SectionForecastWeekly  Section = "forecast_weekly"
	SectionForecastMonthly Section = "forecast_monthly"
	SectionForecastYearly  Section = "forecast_yearly"
)

// ReadingSections lists the five sections enqueued for every activated
// subscription, in enqueue order.
var ReadingSections = []Section{
	SectionSoulMission,
	SectionPersonality,
	SectionDestiny,
	SectionPurpose,
	SectionMaterialManifestation,
}

// SectionDisplayNames maps sections to the display names substituted into
// prompt templates.
var SectionDisplayNames = map[Section]string{
	SectionSoulMission:           "Missão da Alma",
	SectionPersonality:           "Personalidade",
	SectionDestiny:               "Destino",
	SectionPurpose:               "Propósito",
	SectionMaterialManifestation: "Manifestação Material",
}

// DisplayName returns the template display name for a section, falling back
// to the raw section value.
func (s Section) DisplayName() string {
	if name, ok := SectionDisplayNames[s]; ok {
		return name
	}
	return string(s)
}
