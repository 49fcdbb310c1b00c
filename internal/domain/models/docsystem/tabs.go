package docsystem

// OpenFile is the tab projection of an open File
type OpenFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// TabState lists open tabs in display order and the active one
type TabState struct {
	Tabs         []OpenFile `json:"tabs"`
	ActiveFileID *string    `json:"active_file_id"`
}
