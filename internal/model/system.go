package model

// VersionInfo contains version and feature information for the application.
type VersionInfo struct {
	AppVersion   string          `json:"app_version"`
	DbVersion    string          `json:"db_version,omitempty"`
	CacheBackend string          `json:"cache_backend"`
	Features     map[string]bool `json:"features"`
}
