package models

// SettingsKind tags the variant held by EffectiveSettings.
type SettingsKind string

const (
	SettingsCustom      SettingsKind = "Custom"
	SettingsDisabled    SettingsKind = "Disabled"
	SettingsSiteDefault SettingsKind = "SiteDefault"
)

// EffectiveSettings is the outcome of walking a page's inheritance chain.
// Exactly one of Page (Custom) or Site (SiteDefault) is set; Disabled carries neither.
type EffectiveSettings struct {
	Kind SettingsKind
	Page *Page
	Site *SiteSettings
}

// CustomSettings wraps a page that owns its settings.
func CustomSettings(p *Page) EffectiveSettings {
	return EffectiveSettings{Kind: SettingsCustom, Page: p}
}

// DisabledSettings is the terminal "no review obligation" result.
func DisabledSettings() EffectiveSettings {
	return EffectiveSettings{Kind: SettingsDisabled}
}

// SiteDefaultSettings wraps the site-wide fallback.
func SiteDefaultSettings(s *SiteSettings) EffectiveSettings {
	return EffectiveSettings{Kind: SettingsSiteDefault, Site: s}
}

// Disabled reports whether review is switched off or nothing was resolved.
func (e EffectiveSettings) Disabled() bool {
	switch e.Kind {
	case SettingsCustom:
		return e.Page == nil
	case SettingsSiteDefault:
		return e.Site == nil
	default:
		return true
	}
}

// PeriodDays returns the review period of the governing settings.
func (e EffectiveSettings) PeriodDays() int {
	switch {
	case e.Disabled():
		return 0
	case e.Kind == SettingsCustom:
		return e.Page.ReviewPeriodDays
	default:
		return e.Site.ReviewPeriodDays
	}
}

func (e EffectiveSettings) OwnerUserIDs() []string {
	switch {
	case e.Disabled():
		return nil
	case e.Kind == SettingsCustom:
		return e.Page.OwnerUserIDs
	default:
		return e.Site.OwnerUserIDs
	}
}

func (e EffectiveSettings) OwnerGroupIDs() []string {
	switch {
	case e.Disabled():
		return nil
	case e.Kind == SettingsCustom:
		return e.Page.OwnerGroupIDs
	default:
		return e.Site.OwnerGroupIDs
	}
}

// HasOwnerRefs reports whether any owner user or group is attached.
func (e EffectiveSettings) HasOwnerRefs() bool {
	return len(e.OwnerUserIDs()) > 0 || len(e.OwnerGroupIDs()) > 0
}

// Source describes where the settings come from relative to page.
func (e EffectiveSettings) Source(page *Page) string {
	switch {
	case e.Disabled():
		return "Disabled"
	case e.Kind == SettingsSiteDefault:
		return "Inherited from Settings"
	case page != nil && e.Page.ID == page.ID:
		return "Custom"
	default:
		return "Inherited from " + e.Page.Title
	}
}
