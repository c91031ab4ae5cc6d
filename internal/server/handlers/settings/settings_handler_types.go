package settings

type SettingEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type SetSettingsRequest struct {
	List  []SettingEntry `json:"list"`
	Key   string         `json:"key"`
	Value any            `json:"value"`
}
