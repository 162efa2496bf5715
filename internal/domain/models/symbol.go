package models

// SymbolInfo is one entry of the exchange symbol directory.
type SymbolInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
