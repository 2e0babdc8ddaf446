package market

// Dataset is one public CSV from datos.gov.co.
type Dataset struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Dimension string `json:"dimension"`
	// Filters are the normalized columns offered as selectors.
	Filters []string `json:"filters"`
}

var Catalog = []Dataset{
	{
		Key:       "nacional",
		Title:     "Nacional - Establecimientos de Belleza",
		URL:       "https://www.datos.gov.co/api/views/e27n-di57/rows.csv?accessType=DOWNLOAD",
		Dimension: "municipio comercial",
		Filters:   []string{"nombre del establecimiento", "municipio comercial"},
	},
	{
		Key:       "risaralda",
		Title:     "Risaralda - Estética Facial y Corporal",
		URL:       "https://www.datos.gov.co/api/views/92e4-cjqu/rows.csv?accessType=DOWNLOAD",
		Dimension: "municipio",
		Filters:   []string{"municipio"},
	},
	{
		Key:       "local",
		Title:     "Estética Local (Ejemplo)",
		URL:       "https://www.datos.gov.co/api/views/mwxa-drpn/rows.csv?accessType=DOWNLOAD",
		Dimension: "barrio",
		Filters:   []string{"barrio"},
	},
}

func Lookup(key string) (Dataset, bool) {
	for _, d := range Catalog {
		if d.Key == key {
			return d, true
		}
	}
	return Dataset{}, false
}
