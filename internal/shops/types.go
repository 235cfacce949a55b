package shops

import (
	"encoding/json"
	"strings"
)

// Button styles accepted for the storefront wishlist button.
const (
	ButtonStyleButton = "button"
	ButtonStyleIcon   = "icon"
	ButtonStyleLink   = "link"
)

// Settings is the per-shop storefront configuration.
type Settings struct {
	UseMetafields       bool   `json:"useMetafields"`
	PageTitle           string `json:"pageTitle"`
	ButtonText          string `json:"buttonText"`
	RemoveText          string `json:"removeText"`
	ButtonStyle         string `json:"buttonStyle"`
	IconOnly            bool   `json:"iconOnly"`
	DisplayOnCollection bool   `json:"displayOnCollection"`
	DisplayOnProduct    bool   `json:"displayOnProduct"`
}

// DefaultSettings returns the configuration a new shop starts with.
func DefaultSettings() Settings {
	return Settings{
		UseMetafields:       true,
		PageTitle:           "My Wishlist",
		ButtonText:          "Add to Wishlist",
		RemoveText:          "Remove from Wishlist",
		ButtonStyle:         ButtonStyleButton,
		IconOnly:            false,
		DisplayOnCollection: true,
		DisplayOnProduct:    true,
	}
}

// ParseSettings decodes a stored settings document over the defaults, so
// missing keys inherit their default. A blank or malformed document yields
// the defaults and the decode error, if any.
func ParseSettings(raw string) (Settings, error) {
	settings := DefaultSettings()
	if strings.TrimSpace(raw) == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return DefaultSettings(), err
	}
	return settings, nil
}

// Encode renders settings as a stored document.
func (s Settings) Encode() (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// SettingsUpdate is a partial settings document. Nil fields keep the stored
// value.
type SettingsUpdate struct {
	UseMetafields       *bool   `json:"useMetafields"`
	PageTitle           *string `json:"pageTitle" validate:"omitempty,min=1,max=120"`
	ButtonText          *string `json:"buttonText" validate:"omitempty,min=1,max=60"`
	RemoveText          *string `json:"removeText" validate:"omitempty,min=1,max=60"`
	ButtonStyle         *string `json:"buttonStyle" validate:"omitempty,oneof=button icon link"`
	IconOnly            *bool   `json:"iconOnly"`
	DisplayOnCollection *bool   `json:"displayOnCollection"`
	DisplayOnProduct    *bool   `json:"displayOnProduct"`
}

// Apply returns base with every non-nil field of u applied.
func (u SettingsUpdate) Apply(base Settings) Settings {
	if u.UseMetafields != nil {
		base.UseMetafields = *u.UseMetafields
	}
	if u.PageTitle != nil {
		base.PageTitle = strings.TrimSpace(*u.PageTitle)
	}
	if u.ButtonText != nil {
		base.ButtonText = strings.TrimSpace(*u.ButtonText)
	}
	if u.RemoveText != nil {
		base.RemoveText = strings.TrimSpace(*u.RemoveText)
	}
	if u.ButtonStyle != nil {
		base.ButtonStyle = *u.ButtonStyle
	}
	if u.IconOnly != nil {
		base.IconOnly = *u.IconOnly
	}
	if u.DisplayOnCollection != nil {
		base.DisplayOnCollection = *u.DisplayOnCollection
	}
	if u.DisplayOnProduct != nil {
		base.DisplayOnProduct = *u.DisplayOnProduct
	}
	return base
}
