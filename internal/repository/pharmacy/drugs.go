package pharmacy

import (
	"context"
	"net/http"
	"net/url"

	"myPharmacyStore/domain"
)

func (r *PharmacyRepository) GetDrugDetails(ctx context.Context, drugID string) (domain.DrugDetail, error) {
	var detail domain.DrugDetail

	path := "/api/drugs-view/" + url.PathEscape(drugID) + "/details"
	if err := r.do(ctx, "drug_details", http.MethodGet, path, "", nil, &detail); err != nil {
		return domain.DrugDetail{}, err
	}

	return detail, nil
}
