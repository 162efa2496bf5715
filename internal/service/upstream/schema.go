package upstream

// Wire schemas of the upstream provider. Each endpoint names its fields
// independently, so every payload gets its own row type and is mapped to
// domain models at the client boundary.

type barRow struct {
	Date   string  `json:"trade_date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Amount float64 `json:"amount"`
}

type barResponse struct {
	Code int      `json:"code"`
	Data []barRow `json:"data"`
}

type cpiRow struct {
	Month string  `json:"month"`
	YoY   float64 `json:"cpi_yoy"`
}

type cpiResponse struct {
	Code int      `json:"code"`
	Data []cpiRow `json:"data"`
}

type fxRow struct {
	Date string  `json:"date"`
	Rate float64 `json:"central_parity"`
}

type fxResponse struct {
	Code int     `json:"code"`
	Data []fxRow `json:"data"`
}

type pmiRow struct {
	Month string  `json:"month"`
	Value float64 `json:"manufacturing_pmi"`
}

type pmiResponse struct {
	Code int      `json:"code"`
	Data []pmiRow `json:"data"`
}

type gdpRow struct {
	Quarter string  `json:"quarter"`
	Value   float64 `json:"gdp_abs"`
}

type gdpResponse struct {
	Code int      `json:"code"`
	Data []gdpRow `json:"data"`
}

type directoryRow struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type directoryResponse struct {
	Code int            `json:"code"`
	Data []directoryRow `json:"data"`
}

type constituentRow struct {
	Code string `json:"constituent_code"`
}

type constituentResponse struct {
	Code int              `json:"code"`
	Data []constituentRow `json:"data"`
}
