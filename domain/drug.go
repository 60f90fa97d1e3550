package domain

const (
	UnknownDrugName     = "Unknown Drug"
	UnknownDrugCategory = "Unknown"
)

type DrugDetail struct {
	DrugName     string `json:"drugName"`
	Image        string `json:"image,omitempty"`
	Category     string `json:"category"`
	Description  string `json:"description,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

func (d DrugDetail) HasImage() bool {
	return d.Image != ""
}

// FallbackDrugDetail is shown for a line whose lookup failed.
func FallbackDrugDetail() DrugDetail {
	return DrugDetail{
		DrugName: UnknownDrugName,
		Category: UnknownDrugCategory,
	}
}
