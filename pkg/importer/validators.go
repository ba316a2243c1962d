package importer

type StartImportPayload struct {
	BookIDs       []int    `json:"book_ids" validate:"required,min=1,max=50,dive,min=1"`
	Category      string   `json:"category" validate:"required,category"`
	DownloadFiles bool     `json:"download_files" default:"true"`
	Overwrite     bool     `json:"overwrite"`
	Selected      []string `json:"selected,omitempty" validate:"omitempty,max=500"`
	DestinationID string   `json:"destination_id,omitempty"`
	// Confirm is the explicit target-category confirmation; no network call
	// happens without it.
	Confirm bool `json:"confirm"`
}
